package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/classify"
	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
	"github.com/jamesainslie/tidy/pkg/tidy/output"
	"github.com/jamesainslie/tidy/pkg/tidy/planner"
)

var (
	planIn     string
	planOut    string
	planTarget string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a move plan from an inventory",
	Long: `Plan reads an inventory manifest, classifies each file by extension,
and writes a plan manifest of proposed moves with collision-free destinations.
The plan makes no filesystem changes; hand it to 'tidy apply' to execute.`,
	RunE: runPlanCmd,
}

func init() {
	planCmd.Flags().StringVarP(&planIn, "input", "i", "", "inventory manifest path")
	planCmd.Flags().StringVarP(&planOut, "output", "o", "", "plan manifest path (default: stdout)")
	planCmd.Flags().StringVarP(&planTarget, "target", "t", "", "target root for category folders (default: configured target_root)")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	inv, err := manifest.ReadInventory(planIn)
	if err != nil {
		return err
	}

	target := planTarget
	if target == "" {
		target = cfg.TargetRoot
	}

	classifier := classify.New(cfg.CategoryTable(classify.DefaultTable))
	plan, err := planner.New(target, classifier).Build(inv)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}

	if planOut != "" {
		if err := manifest.WritePlan(planOut, plan); err != nil {
			return err
		}
	} else if err := manifest.Encode(os.Stdout, plan); err != nil {
		return err
	}

	recordHistory(manifest.OpPlan, planOut, manifest.EntrySummary{
		TotalRecords: len(plan),
	})

	if planOut == "" {
		return nil
	}
	report := output.FromPlan(planIn, plan)
	report.Artifact = planOut
	return renderReport(report)
}
