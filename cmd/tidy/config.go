package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/classify"
	"github.com/jamesainslie/tidy/pkg/tidy/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage tidy configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/tidy/config.yaml (if set)
  2. ~/.config/tidy/config.yaml

Environment variables can override config file settings using the TIDY_ prefix:
  TIDY_TARGET_ROOT=~/Sorted
  TIDY_MIN_SIZE=1M`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the effective configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Printf("source_dir:   %s\n", cfg.SourceDir)
	fmt.Printf("target_root:  %s\n", cfg.TargetRoot)
	fmt.Printf("min_size:     %s\n", cfg.MinSize)
	fmt.Printf("recursive:    %v\n", cfg.Recursive)
	fmt.Printf("hash:         %v\n", cfg.Hash)
	fmt.Printf("history:\n")
	fmt.Printf("  enabled:        %v\n", cfg.History.Enabled)
	fmt.Printf("  path:           %s\n", cfg.History.Path)
	fmt.Printf("  retention_days: %d\n", cfg.History.RetentionDays)
	fmt.Printf("logging:\n")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)

	table := cfg.CategoryTable(classify.DefaultTable)
	cats := make([]string, 0, len(table))
	for cat := range table {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	fmt.Printf("categories:\n")
	for _, cat := range cats {
		fmt.Printf("  %-10s %d extensions\n", cat+":", len(table[cat]))
	}
	return nil
}

// runConfigInit writes a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Printf("Configuration file ready at %s\n", filepath.Join(dir, "config.yaml"))
	return nil
}

// runConfigPath prints the configuration file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(dir, "config.yaml"))
	return nil
}
