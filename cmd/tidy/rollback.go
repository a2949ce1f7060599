package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
	"github.com/jamesainslie/tidy/pkg/tidy/output"
	"github.com/jamesainslie/tidy/pkg/tidy/rollback"
)

var (
	rollbackIn      string
	rollbackOut     string
	rollbackDryRun  bool
	rollbackCleanup bool
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Undo the moves recorded in an apply log",
	Long: `Rollback reads an apply log and moves every file recorded as moved back
to its original location, in reverse order. When the log carries content
hashes, a file whose content changed since the move is left in place and
flagged rather than blindly moved back.

With --cleanup, category directories left empty by the rollback are removed.`,
	RunE: runRollbackCmd,
}

func init() {
	rollbackCmd.Flags().StringVarP(&rollbackIn, "input", "i", "", "apply log path")
	rollbackCmd.Flags().StringVarP(&rollbackOut, "output", "o", "rollback-log.json", "rollback log path")
	rollbackCmd.Flags().BoolVar(&rollbackDryRun, "dry-run", false, "simulate without moving files")
	rollbackCmd.Flags().BoolVar(&rollbackCleanup, "cleanup", false, "remove category directories left empty")
	_ = rollbackCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollbackCmd(cmd *cobra.Command, args []string) error {
	applyLog, err := manifest.ReadApplyLog(rollbackIn)
	if err != nil {
		return err
	}

	log, err := rollback.New(rollback.Options{
		DryRun:  rollbackDryRun,
		Cleanup: rollbackCleanup,
	}).Run(applyLog)
	if err != nil {
		return err
	}

	if err := manifest.WriteRollbackLog(rollbackOut, log); err != nil {
		return err
	}

	recordHistory(manifest.OpRollback, rollbackOut, manifest.EntrySummary{
		TotalRecords: len(log.Records),
		Success:      log.Stats.Restored,
		Failed:       log.Stats.Failed,
		Skipped:      log.Stats.Skipped,
		DryRun:       log.DryRun,
	})

	report := output.FromRollbackLog(rollbackIn, log)
	report.Artifact = rollbackOut
	if err := renderReport(report); err != nil {
		return err
	}

	if log.Stats.Failed > 0 {
		return fmt.Errorf("rollback finished with %d failed operations (see %s)", log.Stats.Failed, rollbackOut)
	}
	return nil
}
