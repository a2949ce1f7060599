package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/applier"
	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
	"github.com/jamesainslie/tidy/pkg/tidy/output"
)

var (
	applyIn     string
	applyOut    string
	applyDryRun bool
	applyVerify bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute a move plan",
	Long: `Apply executes the moves in a plan manifest and writes an apply log,
the durable record 'tidy rollback' needs to undo them. The log is written
even when every operation skipped or failed.

Existing files are never overwritten, and one failed move never aborts the
batch. With --verify-hash each moved file is re-hashed and compared against
its scan-time hash; mismatches are flagged on the record for review, not
reverted.`,
	RunE: runApplyCmd,
}

func init() {
	applyCmd.Flags().StringVarP(&applyIn, "input", "i", "", "plan manifest path")
	applyCmd.Flags().StringVarP(&applyOut, "output", "o", "apply-log.json", "apply log path")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "simulate without moving files")
	applyCmd.Flags().BoolVar(&applyVerify, "verify-hash", false, "verify content hashes after moving")
	_ = applyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(applyCmd)
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	plan, err := manifest.ReadPlan(applyIn)
	if err != nil {
		return err
	}

	log := applier.New(applier.Options{
		DryRun:     applyDryRun,
		VerifyHash: applyVerify,
	}).Run(plan)

	// The apply log is the contract artifact rollback depends on; it is
	// written before any success/failure accounting.
	if err := manifest.WriteApplyLog(applyOut, log); err != nil {
		return err
	}

	recordHistory(manifest.OpApply, applyOut, manifest.EntrySummary{
		TotalRecords: len(log.Records),
		Success:      log.Stats.Success,
		Failed:       log.Stats.Failed,
		Skipped:      log.Stats.Skipped,
		DryRun:       log.DryRun,
	})

	report := output.FromApplyLog(applyIn, log)
	report.Artifact = applyOut
	if err := renderReport(report); err != nil {
		return err
	}

	if log.Stats.Failed > 0 {
		return fmt.Errorf("apply finished with %d failed operations (see %s)", log.Stats.Failed, applyOut)
	}
	return nil
}
