package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Beastly713/sss/pkg/format"
	"github.com/Beastly713/sss/pkg/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShareFileName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"diary.txt", "diary_1_of_5.share"},
		{"archive.tar.gz", "archive.tar_1_of_5.share"},
		{"", "secret_1_of_5.share"},
		{"../../etc/passwd", "passwd_1_of_5.share"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shareFileName(tt.label, 1, 5), tt.label)
	}
}

// writeSecretSet splits secret and writes every share into dir.
func writeSecretSet(t *testing.T, dir, label string, n, k int, secret string) string {
	t.Helper()
	shares, err := shamir.Split(n, k, []byte(secret))
	require.NoError(t, err)

	setID := format.NewSetID()
	for i := 1; i <= n; i++ {
		h := &format.Header{
			SetID:     setID,
			Kind:      format.KindSecret,
			Label:     label,
			Index:     i,
			Total:     n,
			Threshold: k,
		}
		require.NoError(t, writeShareFile(filepath.Join(dir, shareFileName(label, i, n)), h, shares[i]))
	}
	return setID
}

func TestLoadAndGroup(t *testing.T) {
	dir := t.TempDir()
	idA := writeSecretSet(t, dir, "alpha", 3, 2, "first")
	idB := writeSecretSet(t, dir, "beta", 4, 3, "second")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.share"), []byte("not a share"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o600))

	paths, err := findShareFiles(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 8)

	_, err = loadShareFiles(paths, true, zap.NewNop())
	assert.ErrorContains(t, err, "junk.share")

	loaded, err := loadShareFiles(paths, false, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, loaded, 7)

	sets := groupBySet(loaded)
	require.Len(t, sets, 2)
	assert.Equal(t, idA, sets[0].ID)
	assert.Equal(t, idB, sets[1].ID)
	for i, sh := range sets[1].Shares {
		assert.Equal(t, i+1, sh.Header.Index)
	}

	splitter := shamir.New()
	got, err := sets[0].reconstruct(splitter)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
	assert.Equal(t, "alpha.secret", sets[0].outputName())

	sets[1].Shares = sets[1].Shares[:2]
	_, err = sets[1].reconstruct(splitter)
	assert.ErrorContains(t, err, "need 3, found 2")
}

func TestCheckRejectsInconsistentSet(t *testing.T) {
	dir := t.TempDir()
	writeSecretSet(t, dir, "gamma", 3, 2, "third")

	paths, err := findShareFiles(dir)
	require.NoError(t, err)
	loaded, err := loadShareFiles(paths, true, zap.NewNop())
	require.NoError(t, err)

	sets := groupBySet(loaded)
	require.Len(t, sets, 1)
	sets[0].Shares[1].Header.Threshold = 3
	assert.ErrorContains(t, sets[0].check(), "disagrees")
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	require.NoError(t, writeOutput(path, []byte("one"), false))

	err := writeOutput(path, []byte("two"), false)
	assert.ErrorIs(t, err, errExists)

	require.NoError(t, writeOutput(path, []byte("two"), true))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}
