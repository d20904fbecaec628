package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Beastly713/sss/pkg/shamir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each can come from a flag, an SSS_ environment
// variable or the config file, in that order of precedence.
const (
	keyShares    = "shares"
	keyThreshold = "threshold"
	keyWorkers   = "workers"
	keyVerbose   = "verbose"
)

const envPrefix = "SSS"

func (a *app) bindFlags(fs *pflag.FlagSet) {
	for _, key := range []string{keyShares, keyThreshold, keyWorkers, keyVerbose} {
		// Lookup cannot fail: the flags were registered just above.
		_ = a.v.BindPFlag(key, fs.Lookup(key))
	}
}

func (a *app) loadConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", a.cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	a.v.AddConfigPath(home)
	a.v.SetConfigName(".sss")
	a.v.SetConfigType("yaml")

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (a *app) shareCounts() (total, threshold int) {
	return a.v.GetInt(keyShares), a.v.GetInt(keyThreshold)
}

func (a *app) splitter() *shamir.Splitter {
	return shamir.New(shamir.WithWorkers(a.v.GetInt(keyWorkers)))
}
