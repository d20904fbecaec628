package cmd

import (
	"os"

	"github.com/Beastly713/sss/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries the state shared by every subcommand of one command tree.
type app struct {
	v       *viper.Viper
	log     *zap.Logger
	cfgFile string
}

// NewRootCmd builds a fresh command tree. Each tree has its own flags and
// configuration, so tests can execute several in one process.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: logging.Nop(),
	}

	root := &cobra.Command{
		Use:   "sss",
		Short: "Split secrets into shares, any k of which bring them back",
		Long: `sss implements Shamir's Secret Sharing over GF(256).

A secret is split into n shares so that any k of them reconstruct it
exactly, while k-1 or fewer reveal nothing about it.

  sss split -n 5 -t 3 --secret 'Hi!'        print 5 text shares
  sss join 2:... 4:... 5:...                  recover the secret
  sss seal diary.txt -n 5 -t 3 -d shares/     split a whole file
  sss bind shares/                            put it back together`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.sss.yaml)")
	pf.IntP(keyShares, "n", 0, "Total number of shares to make")
	pf.IntP(keyThreshold, "t", 0, "Number of shares required to reconstruct")
	pf.Int(keyWorkers, 1, "Goroutines used to split or join long secrets")
	pf.BoolP(keyVerbose, "v", false, "Verbose logging")
	a.bindFlags(pf)

	root.AddCommand(
		newSplitCmd(a),
		newJoinCmd(a),
		newSealCmd(a),
		newBindCmd(a),
		newInteractiveCmd(a),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	logger, err := logging.New(a.v.GetBool(keyVerbose))
	if err != nil {
		return err
	}
	a.log = logger.Named(cmd.Name())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("loaded config", zap.String("file", used))
	}
	return nil
}
