package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Beastly713/sss/pkg/crypto/secrets"
	"github.com/Beastly713/sss/pkg/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type splitOptions struct {
	secret  string
	inFile  string
	destDir string
	label   string
	raw     bool
}

func newSplitCmd(a *app) *cobra.Command {
	opts := &splitOptions{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into n shares, any t of which recover it",
		Long: `Split a secret into N shares. Any T of them reconstruct the secret
exactly; T-1 or fewer reveal nothing about it.

The secret comes from --secret, --in FILE or standard input. Shares are
printed one per line as index:base64, or written as share files with
--destination.

Example:
  sss split -n 5 -t 3 --secret 'Hi!'
  echo 'correct horse' | sss split -n 3 -t 2 -d shares/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.secret, "secret", "", "Secret to split (visible in shell history; prefer stdin)")
	f.StringVarP(&opts.inFile, "in", "i", "", "Read the secret from a file")
	f.StringVarP(&opts.destDir, "destination", "d", "", "Write share files to this directory instead of printing")
	f.StringVar(&opts.label, "label", "", "Name recorded in share files and used for their filenames")
	f.BoolVar(&opts.raw, "raw", false, "Keep a trailing newline read from standard input")
	cmd.MarkFlagsMutuallyExclusive("secret", "in")
	return cmd
}

func (o *splitOptions) readSecret(cmd *cobra.Command) ([]byte, error) {
	switch {
	case cmd.Flags().Changed("secret"):
		return []byte(o.secret), nil
	case o.inFile != "":
		data, err := os.ReadFile(o.inFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	if !o.raw {
		data = bytes.TrimSuffix(data, []byte("\n"))
		data = bytes.TrimSuffix(data, []byte("\r"))
	}
	return data, nil
}

func (a *app) runSplit(cmd *cobra.Command, opts *splitOptions) error {
	total, threshold := a.shareCounts()

	data, err := opts.readSecret(cmd)
	if err != nil {
		return err
	}
	secret := secrets.WrapSecret(data)
	defer secret.Destroy()

	start := time.Now()
	shares, err := a.splitter().Split(total, threshold, secret.Bytes())
	if err != nil {
		return fmt.Errorf("failed to split secret: %w", err)
	}
	a.log.Debug("split secret",
		zap.Stringer("secret", secret),
		zap.Int("shares", total),
		zap.Int("threshold", threshold),
		zap.Duration("took", time.Since(start)))

	if opts.destDir == "" {
		return format.WriteText(cmd.OutOrStdout(), shares)
	}

	if err := os.MkdirAll(opts.destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	label := opts.label
	if label == "" && opts.inFile != "" {
		label = filepath.Base(opts.inFile)
	}
	setID := format.NewSetID()
	timestamp := time.Now().Unix()

	for index := 1; index <= total; index++ {
		header := &format.Header{
			SetID:     setID,
			Kind:      format.KindSecret,
			Label:     label,
			Timestamp: timestamp,
			Index:     index,
			Total:     total,
			Threshold: threshold,
		}
		outName := shareFileName(label, index, total)
		if err := writeShareFile(filepath.Join(opts.destDir, outName), header, shares[index]); err != nil {
			return err
		}
		statusf(cmd, "Created %s", outName)
	}

	a.log.Debug("wrote share files", zap.String("set", setID), zap.String("dir", opts.destDir))
	successf(cmd, "Done! Any %d of these %d shares recover the secret.", threshold, total)
	return nil
}
