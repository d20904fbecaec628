package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type bindOptions struct {
	outDir    string
	overwrite bool
}

func newBindCmd(a *app) *cobra.Command {
	opts := &bindOptions{}

	cmd := &cobra.Command{
		Use:   "bind [directory]",
		Short: "Reconstruct originals from a directory of share files",
		Long: `Bind looks for .share files in the specified directory (or the
current directory if not provided), validates them, groups them by set and
reconstructs every set that has enough shares.

Sealed files are written under their original name. Secrets split with
"split -d" are written to <label>.secret.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceDir := "."
			if len(args) > 0 {
				sourceDir = args[0]
			}
			return a.runBind(cmd, sourceDir, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "destination", "d", "", "Directory to write the reconstructed files")
	f.BoolVar(&opts.overwrite, "overwrite", false, "Overwrite existing files if present")
	return cmd
}

func (a *app) runBind(cmd *cobra.Command, sourceDir string, opts *bindOptions) error {
	statusf(cmd, "Scanning for shares in %s...", sourceDir)

	paths, err := findShareFiles(sourceDir)
	if err != nil {
		return err
	}
	loaded, err := loadShareFiles(paths, false, a.log)
	if err != nil {
		return err
	}
	sets := groupBySet(loaded)
	if len(sets) == 0 {
		return fmt.Errorf("no valid shares found in %s", sourceDir)
	}

	restored := 0
	splitter := a.splitter()
	for _, set := range sets {
		ref := set.ref()
		statusf(cmd, "Found shares for %s (%d/%d)", set.describe(), len(set.Shares), ref.Threshold)

		data, err := set.reconstruct(splitter)
		if err != nil {
			warnf(cmd, "Skipping %s: %v", set.describe(), err)
			continue
		}

		finalPath := filepath.Join(opts.outDir, set.outputName())
		err = writeOutput(finalPath, data, opts.overwrite)
		clear(data)
		if err != nil {
			warnf(cmd, "Skipping %s: %v", set.describe(), err)
			continue
		}

		a.log.Debug("reconstructed set", zap.String("set", set.ID), zap.String("path", finalPath))
		successf(cmd, "Successfully restored: %s", finalPath)
		restored++
	}

	if restored == 0 {
		return fmt.Errorf("could not reconstruct any of the %d sets in %s", len(sets), sourceDir)
	}
	return nil
}
