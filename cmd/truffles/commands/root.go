// Package commands implements the CLI commands for truffles.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/truffles/internal/config"
	"github.com/jmylchreest/truffles/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "truffles",
	Short: "Incremental real-estate listing harvester",
	Long: `Truffles crawls real-estate search pages, classifies every listing as a
plot or a property, and appends the results to CSV files in its data
directory (default ~/.truffles). Listings fetched within the freshness
window are skipped on later runs.

Examples:
  # Crawl every seed
  truffles crawl

  # Only plots in Limassol, one request every 2 seconds
  truffles crawl --area limassol --kind plot --throttle 2000

  # Export the newest record per listing as JSON lines
  truffles export --format jsonl --latest -o listings.jsonl`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.truffles.yaml)")
	flags.String("data-dir", "", "directory holding plots.csv and properties.csv (default ~/.truffles)")
	flags.StringP("level", "l", "", "log level: debug, info, warn, error (default warn)")
	flags.String("log-file", "", "log file, - to disable (default <data-dir>/truffles.log)")
	flags.Bool("log-json", false, "write logs as JSON")
	flags.BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("data-dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("level", flags.Lookup("level"))
	_ = viper.BindPFlag("log-file", flags.Lookup("log-file"))
	_ = viper.BindPFlag("log-json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".truffles")
		viper.SetConfigType("yaml")
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup resolves the configuration and starts logging. Commands that only
// read the store pass readOnly and get a log file only when one is
// configured explicitly. The returned function closes the log file.
func setup(readOnly bool) (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(viper.GetViper()); err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	if path := cfg.LogPath(); path != "-" && (!readOnly || cfg.LogFile != "") {
		f, err := logger.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = func() { _ = f.Close() }
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: out,
	})
	logger.Debug("configuration", "data_dir", cfg.DataDir, "throttle", cfg.Throttle,
		"freshness", cfg.Freshness, "log_file", cfg.LogPath())
	return cfg, closer, nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
