package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/config"
	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	Long: `View the history of scan, plan, apply, and rollback runs.

Each run records which artifact it wrote, so old apply logs can be located
and rolled back later. History is informational only: rollback always takes
an explicit apply log path.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries older than the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getHistory returns the history store at the configured directory.
func getHistory() (*manifest.History, error) {
	return manifest.NewHistory(cfg.History.Path)
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	h, err := getHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	entries, err := h.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		fmt.Println("Run 'tidy scan' to get started.")
		return nil
	}

	fmt.Printf("\n%-38s  %-8s  %-7s  %-7s  %-7s  %s\n", "ID", "STAGE", "TOTAL", "FAILED", "SKIPPED", "ARTIFACT")
	fmt.Println(strings.Repeat("-", 90))

	for _, entry := range entries {
		fmt.Printf("%-38s  %-8s  %-7d  %-7d  %-7d  %s\n",
			truncateString(entry.ID, 38),
			entry.Operation,
			entry.Summary.TotalRecords,
			entry.Summary.Failed,
			entry.Summary.Skipped,
			entry.Artifact,
		)
	}

	fmt.Println(strings.Repeat("-", 90))
	fmt.Println("\nUse 'tidy history show <id>' for details on a specific run.")
	return nil
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, err := getHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	entry, err := h.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nRun Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:        %s\n", entry.ID)
	fmt.Printf("Timestamp: %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Stage:     %s\n", entry.Operation)
	fmt.Printf("Artifact:  %s\n", entry.Artifact)
	fmt.Printf("Records:   %d\n", entry.Summary.TotalRecords)
	if entry.Summary.DryRun {
		fmt.Println("Dry run:   yes")
	}
	if entry.Summary.Success > 0 || entry.Summary.Failed > 0 || entry.Summary.Skipped > 0 {
		fmt.Printf("Outcomes:  %d success, %d failed, %d skipped\n",
			entry.Summary.Success, entry.Summary.Failed, entry.Summary.Skipped)
	}
	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	h, err := getHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	retentionDays := cfg.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	fmt.Printf("Cleaning history entries older than %d days...\n", retentionDays)
	if err := h.Cleanup(retentionDays); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	fmt.Println("History cleanup complete.")
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
