package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/tidy/pkg/tidy/config"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
	"github.com/jamesainslie/tidy/pkg/tidy/output"
)

var (
	cfgFile string

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "tidy",
		Short: "Organize a downloads folder into categories, reversibly",
		Long: `Tidy reorganizes a flat downloads folder into category subdirectories
through a three-stage pipeline connected by JSON manifests:

  tidy scan     -d ~/Downloads -o inventory.json       # snapshot the folder
  tidy plan     -i inventory.json -o plan.json         # propose moves
  tidy apply    -i plan.json -o apply-log.json         # execute moves
  tidy rollback -i apply-log.json -o rollback-log.json # undo everything

Each stage reads a saved artifact from the previous one, so runs can be
inspected, replayed, and fully undone. Use --dry-run on apply or rollback
to preview without touching the filesystem.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tidy/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "plain", "report format (plain, table, json, yaml, template)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress the stage report")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig points viper at the config file when one was given explicitly.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads configuration and initializes logging for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.Config{
		Level: cfg.Logging.Level,
		Path:  cfg.Logging.Path,
	}
	logCfg.ConsoleLevel = cfg.Logging.Console
	if getVerbose() {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// renderReport prints the stage report to stdout in the selected format,
// unless quiet mode is on.
func renderReport(r *output.Report) error {
	if getQuiet() {
		return nil
	}
	formatter, err := output.Get(viper.GetString("format"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("format report: %w", err)
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// recordHistory appends a run history entry when history is enabled.
// History failures are reported on stderr but never fail the stage.
func recordHistory(op manifest.Operation, artifact string, summary manifest.EntrySummary) {
	if cfg == nil || !cfg.History.Enabled {
		return
	}
	h, err := manifest.NewHistory(cfg.History.Path)
	if err == nil {
		err = h.EnsureDir()
	}
	if err == nil {
		_, err = h.Record(op, artifact, summary)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
	}
}
