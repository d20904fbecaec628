package cmd

import (
	"fmt"
	"strings"

	"github.com/Beastly713/sss/pkg/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type joinOptions struct {
	dir       string
	set       string
	output    string
	overwrite bool
}

func newJoinCmd(a *app) *cobra.Command {
	opts := &joinOptions{}

	cmd := &cobra.Command{
		Use:   "join [share...]",
		Short: "Recover a secret from its shares",
		Long: `Join reconstructs a secret from index:base64 shares given as
arguments or read one per line from standard input, or from the share
files in --dir.

Text shares carry no threshold, so joining fewer than T of them cannot be
detected and yields a wrong secret. Share files record their threshold and
are checked.

Example:
  sss join 2:... 4:... 5:...
  sss join --dir shares/ -o secret.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJoin(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "Read share files from this directory")
	f.StringVar(&opts.set, "set", "", "Set ID to join when --dir holds several")
	f.StringVarP(&opts.output, "output", "o", "", "Write the secret to a file instead of stdout")
	f.BoolVar(&opts.overwrite, "overwrite", false, "Overwrite the output file if present")
	return cmd
}

func (a *app) runJoin(cmd *cobra.Command, args []string, opts *joinOptions) error {
	var (
		secret []byte
		err    error
	)
	if opts.dir != "" {
		if len(args) > 0 {
			return fmt.Errorf("--dir cannot be combined with share arguments")
		}
		secret, err = a.joinDir(opts)
	} else {
		secret, err = a.joinText(cmd, args)
	}
	if err != nil {
		return err
	}
	defer clear(secret)

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(secret)
		return err
	}
	if err := writeOutput(opts.output, secret, opts.overwrite); err != nil {
		return err
	}
	successf(cmd, "Recovered secret written to %s", opts.output)
	return nil
}

func (a *app) joinText(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		shares map[int][]byte
		err    error
	)
	if len(args) > 0 {
		shares, err = format.ParseTextLines(strings.NewReader(strings.Join(args, "\n")))
	} else {
		shares, err = format.ParseTextLines(cmd.InOrStdin())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse shares: %w", err)
	}

	a.log.Debug("joining text shares", zap.Int("count", len(shares)))
	secret, err := a.splitter().Join(shares)
	if err != nil {
		return nil, fmt.Errorf("failed to join shares: %w", err)
	}
	return secret, nil
}

func (a *app) joinDir(opts *joinOptions) ([]byte, error) {
	paths, err := findShareFiles(opts.dir)
	if err != nil {
		return nil, err
	}
	loaded, err := loadShareFiles(paths, false, a.log)
	if err != nil {
		return nil, err
	}

	var candidates []*shareSet
	for _, set := range groupBySet(loaded) {
		if set.ref().Kind != format.KindSecret {
			continue
		}
		if opts.set == "" || set.ID == opts.set {
			candidates = append(candidates, set)
		}
	}

	switch len(candidates) {
	case 0:
		if opts.set != "" {
			return nil, fmt.Errorf("no secret shares of set %s in %s", opts.set, opts.dir)
		}
		return nil, fmt.Errorf("no secret shares found in %s", opts.dir)
	case 1:
	default:
		ids := make([]string, len(candidates))
		for i, set := range candidates {
			ids[i] = set.describe()
		}
		return nil, fmt.Errorf("%s holds %d sets, pick one with --set: %s",
			opts.dir, len(candidates), strings.Join(ids, ", "))
	}

	set := candidates[0]
	a.log.Debug("joining share files",
		zap.String("set", set.ID),
		zap.Int("found", len(set.Shares)),
		zap.Int("threshold", set.ref().Threshold))
	secret, err := set.reconstruct(a.splitter())
	if err != nil {
		return nil, fmt.Errorf("failed to join %s: %w", set.describe(), err)
	}
	return secret, nil
}
