package tests

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Beastly713/sss/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one command line on a fresh command tree and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

// TestSplitJoinText walks the demo: split "Hi!" five ways, then recover it
// from two different sets of three.
func TestSplitJoinText(t *testing.T) {
	out, err := run(t, "", "split", "-n", "5", "-t", "3", "--secret", "Hi!")
	require.NoError(t, err)

	shares := lines(out)
	require.Len(t, shares, 5)
	for i, line := range shares {
		assert.True(t, strings.HasPrefix(line, string(rune('1'+i))+":"), line)
	}

	secret, err := run(t, "", "join", shares[1], shares[3], shares[4])
	require.NoError(t, err)
	assert.Equal(t, "Hi!", secret)

	stdin := "# three of five\n" + shares[0] + "\n\n" + shares[2] + "\n" + shares[4] + "\n"
	secret, err = run(t, stdin, "join")
	require.NoError(t, err)
	assert.Equal(t, "Hi!", secret)
}

func TestSplitFromStdin(t *testing.T) {
	out, err := run(t, "correct horse\n", "split", "-n", "3", "-t", "2")
	require.NoError(t, err)
	shares := lines(out)
	require.Len(t, shares, 3)

	secret, err := run(t, "", "join", shares[0], shares[2])
	require.NoError(t, err)
	assert.Equal(t, "correct horse", secret)

	out, err = run(t, "correct horse\n", "split", "-n", "3", "-t", "2", "--raw")
	require.NoError(t, err)
	secret, err = run(t, out, "join")
	require.NoError(t, err)
	assert.Equal(t, "correct horse\n", secret)
}

func TestSplitJoinRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "split", "-n", "2", "-t", "3", "--secret", "x")
	assert.ErrorContains(t, err, "threshold")

	_, err = run(t, "", "split", "-n", "3", "-t", "2", "--secret", "")
	assert.ErrorContains(t, err, "secret")

	_, err = run(t, "", "join", "1:AAA=", "2:AA==")
	assert.ErrorContains(t, err, "share 2")

	_, err = run(t, "", "join", "1:AAA=", "1:AAA=")
	assert.ErrorContains(t, err, "duplicate")

	_, err = run(t, "", "join", "not a share")
	assert.ErrorContains(t, err, "malformed share")
}

func TestSplitJoinShareFiles(t *testing.T) {
	tmpDir := t.TempDir()
	shareDir := filepath.Join(tmpDir, "shares")
	secretFile := filepath.Join(tmpDir, "wifi.txt")
	require.NoError(t, os.WriteFile(secretFile, []byte("hunter2"), 0o600))

	_, err := run(t, "", "split", "-n", "4", "-t", "2", "--in", secretFile, "-d", shareDir)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(shareDir, "*.share"))
	require.NoError(t, err)
	require.Len(t, matches, 4)
	assert.FileExists(t, filepath.Join(shareDir, "wifi_1_of_4.share"))

	require.NoError(t, os.Remove(matches[0]))
	require.NoError(t, os.Remove(matches[1]))

	outFile := filepath.Join(tmpDir, "recovered.txt")
	_, err = run(t, "", "join", "--dir", shareDir, "-o", outFile)
	require.NoError(t, err)
	got, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(got))

	_, err = run(t, "", "join", "--dir", shareDir, "-o", outFile)
	assert.ErrorContains(t, err, "already exists")

	// One share is below the recorded threshold.
	require.NoError(t, os.Remove(matches[2]))
	_, err = run(t, "", "join", "--dir", shareDir)
	assert.ErrorContains(t, err, "not enough shares")
}

func TestJoinDirPicksSet(t *testing.T) {
	shareDir := t.TempDir()

	_, err := run(t, "", "split", "-n", "2", "-t", "2", "--secret", "one", "--label", "a", "-d", shareDir)
	require.NoError(t, err)
	_, err = run(t, "", "split", "-n", "2", "-t", "2", "--secret", "two", "--label", "b", "-d", shareDir)
	require.NoError(t, err)

	_, err = run(t, "", "join", "--dir", shareDir)
	assert.ErrorContains(t, err, "pick one with --set")
}

// TestSealBindRoundTrip simulates the full user journey: Seal -> partial delete -> Bind
func TestSealBindRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	originalFile := filepath.Join(tmpDir, "secret_plans.txt")
	originalContent := make([]byte, 1024*1024) // 1MB random data
	_, err := rand.Read(originalContent)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(originalFile, originalContent, 0o644))
	originalHash := sha256.Sum256(originalContent)

	shareDir := filepath.Join(tmpDir, "shares")
	_, err = run(t, "", "seal", originalFile, "-n", "5", "-t", "3", "-d", shareDir, "--workers", "4")
	require.NoError(t, err, "Seal command failed")

	matches, err := filepath.Glob(filepath.Join(shareDir, "*.share"))
	require.NoError(t, err)
	require.Len(t, matches, 5, "Should have created 5 share files")

	// Threshold is 3, so two can be lost.
	require.NoError(t, os.Remove(matches[0]))
	require.NoError(t, os.Remove(matches[3]))

	restoreDir := t.TempDir()
	_, err = run(t, "", "bind", shareDir, "--destination", restoreDir, "--workers", "4")
	require.NoError(t, err, "Bind command failed")

	restoredContent, err := os.ReadFile(filepath.Join(restoreDir, "secret_plans.txt"))
	require.NoError(t, err, "Failed to read restored file")
	assert.Equal(t, originalHash, sha256.Sum256(restoredContent), "restored file hash mismatch")

	// A second bind must not clobber the restored file.
	_, err = run(t, "", "bind", shareDir, "--destination", restoreDir)
	assert.Error(t, err)
	_, err = run(t, "", "bind", shareDir, "--destination", restoreDir, "--overwrite")
	assert.NoError(t, err)
}

func TestBindSkipsTamperedShare(t *testing.T) {
	tmpDir := t.TempDir()
	originalFile := filepath.Join(tmpDir, "notes.md")
	require.NoError(t, os.WriteFile(originalFile, []byte("# meeting notes\n"), 0o644))

	shareDir := filepath.Join(tmpDir, "shares")
	_, err := run(t, "", "seal", originalFile, "-n", "4", "-t", "3", "-d", shareDir, "--compression", "none")
	require.NoError(t, err)

	victim := filepath.Join(shareDir, "notes_2_of_4.share")
	data, err := os.ReadFile(victim)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(victim, data, 0o600))

	restoreDir := t.TempDir()
	_, err = run(t, "", "bind", shareDir, "-d", restoreDir)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(restoreDir, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# meeting notes\n", string(got))

	// Losing one more leaves two valid shares of a threshold of three.
	require.NoError(t, os.Remove(filepath.Join(shareDir, "notes_1_of_4.share")))
	_, err = run(t, "", "bind", shareDir, "-d", t.TempDir())
	assert.ErrorContains(t, err, "could not reconstruct")
}

func TestBindRestoresSecretSets(t *testing.T) {
	shareDir := t.TempDir()
	_, err := run(t, "", "split", "-n", "3", "-t", "2", "--secret", "pin 1234", "--label", "bank", "-d", shareDir)
	require.NoError(t, err)

	restoreDir := t.TempDir()
	_, err = run(t, "", "bind", shareDir, "-d", restoreDir)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(restoreDir, "bank.secret"))
	require.NoError(t, err)
	assert.Equal(t, "pin 1234", string(got))
}

func TestConfigFileAndEnv(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "sss.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("shares: 4\nthreshold: 2\n"), 0o600))

	out, err := run(t, "", "split", "--config", cfg, "--secret", "from config")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)

	// Flags win over the file.
	out, err = run(t, "", "split", "--config", cfg, "-n", "6", "--secret", "from flags")
	require.NoError(t, err)
	assert.Len(t, lines(out), 6)

	t.Setenv("SSS_SHARES", "3")
	t.Setenv("SSS_THRESHOLD", "3")
	out, err = run(t, "", "split", "--secret", "from env")
	require.NoError(t, err)
	shares := lines(out)
	require.Len(t, shares, 3)

	secret, err := run(t, "", append([]string{"join"}, shares...)...)
	require.NoError(t, err)
	assert.Equal(t, "from env", secret)

	_, err = run(t, "", "split", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--secret", "x")
	assert.ErrorContains(t, err, "failed to read config")
}
