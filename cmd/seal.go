package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Beastly713/sss/pkg/format"
	"github.com/Beastly713/sss/pkg/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sealOptions struct {
	destDir     string
	compression string
}

func newSealCmd(a *app) *cobra.Command {
	opts := &sealOptions{}

	cmd := &cobra.Command{
		Use:   "seal [file]",
		Short: "Split a file into encrypted share files",
		Long: `Seal encrypts a file under a fresh key, erasure-codes the
ciphertext into N shards and splits the key with Shamir's scheme. Each
share file carries one shard and one key share. Any T of them recover the
file with bind.

Example:
  sss seal diary.txt -n 5 -t 3

  This creates 5 files. Any 3 are needed to recover diary.txt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSeal(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.destDir, "destination", "d", "", "Directory to output share files (default: next to the input)")
	f.StringVar(&opts.compression, "compression", "gzip", `Compression applied before encryption, "gzip" or "none"`)
	return cmd
}

func (a *app) runSeal(cmd *cobra.Command, filePath string, opts *sealOptions) error {
	total, threshold := a.shareCounts()

	destDir := opts.destDir
	if destDir == "" {
		destDir = filepath.Dir(filePath)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	setID := format.NewSetID()
	start := time.Now()
	statusf(cmd, "Generating key and sealing...")

	sealed, err := pipeline.Seal(file, pipeline.Config{
		Total:       total,
		Threshold:   threshold,
		SetID:       setID,
		Compression: opts.compression,
		Splitter:    a.splitter(),
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	a.log.Debug("sealed file",
		zap.String("file", filePath),
		zap.String("set", setID),
		zap.Int("cipherLength", sealed.CipherLength),
		zap.Duration("took", time.Since(start)))

	originalFilename := filepath.Base(filePath)
	timestamp := time.Now().Unix()

	for _, piece := range sealed.Pieces {
		header := &format.Header{
			SetID:        setID,
			Kind:         format.KindFile,
			Label:        originalFilename,
			Timestamp:    timestamp,
			Index:        piece.Index,
			Total:        total,
			Threshold:    threshold,
			Compression:  sealed.Compression,
			KeyFragment:  piece.KeyFragment,
			CipherLength: sealed.CipherLength,
		}
		outName := shareFileName(originalFilename, piece.Index, total)
		if err := writeShareFile(filepath.Join(destDir, outName), header, piece.Shard); err != nil {
			return err
		}
		statusf(cmd, "Created %s", outName)
	}

	a.log.Debug("wrote share files", zap.String("set", setID), zap.String("dir", destDir))
	successf(cmd, "Done! Keep your shares safe.")
	return nil
}
