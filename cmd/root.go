package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/linksift/internal/config"
	"github.com/btraven00/linksift/internal/engine"
	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/metrics"
)

var (
	cfgFile string
	quiet   bool
	verbose bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linksift",
	Short: "Sort shared Telegram and WhatsApp links and weed out dead ones",
	Long: `Linksift takes a noisy dump of shared messaging links, classifies every
link (channels, groups, bots, message permalinks, WhatsApp groups and numbers),
drops duplicates by identity and writes one sorted list per category.

Any list can then be cleaned: each link is fetched once and kept only if the
page answers below 400 and shows none of the platform's "dead link" phrases.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.linksift.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress progress messages)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "human", "output format (human, json)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".linksift" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".linksift")
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && !quiet {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the global viper state. Flags bound to viper keys take
// precedence over the environment and the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

func newLogger(cfg config.Config) (logger.Logger, error) {
	if quiet && !verbose {
		cfg.Log.Level = "error"
	}

	return logger.New(cfg.Log)
}

func newEngine(cfg config.Config, log logger.Logger, m *metrics.Metrics, opts ...engine.Option) *engine.Engine {
	if log != nil {
		opts = append(opts, engine.WithLogger(log))
	}
	if m != nil {
		opts = append(opts, engine.WithRecorder(m))
	}

	return engine.New(cfg.Probe, opts...)
}

func validateOutput() error {
	switch output {
	case "human", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}
