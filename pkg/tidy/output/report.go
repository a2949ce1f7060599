package output

import (
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// FromInventory builds a report for a scan of root.
func FromInventory(root string, inv types.Inventory) *Report {
	r := &Report{
		Operation:  "scan",
		Source:     root,
		Rows:       make([]Row, 0, len(inv)),
		ByCategory: map[string]int{},
	}
	for _, rec := range inv {
		r.Rows = append(r.Rows, Row{
			Status:    "scanned",
			Source:    rec.SourcePath,
			Size:      rec.SizeBytes,
			SizeHuman: types.FormatSize(rec.SizeBytes),
		})
		r.TotalBytes += rec.SizeBytes
	}
	return r
}

// FromPlan builds a report for a generated plan.
func FromPlan(source string, plan types.Plan) *Report {
	r := &Report{
		Operation:  "plan",
		Source:     source,
		Rows:       make([]Row, 0, len(plan)),
		ByCategory: make(map[string]int),
	}
	for _, op := range plan {
		r.Rows = append(r.Rows, Row{
			Status:   "planned",
			Category: op.Category,
			Source:   op.SourcePath,
			Dest:     op.DestPath,
		})
		r.ByCategory[op.Category]++
	}
	return r
}

// FromApplyLog builds a report for an execution pass.
func FromApplyLog(source string, log *types.ApplyLog) *Report {
	r := &Report{
		Operation:  "apply",
		Source:     source,
		DryRun:     log.DryRun,
		Timestamp:  log.Timestamp,
		Rows:       make([]Row, 0, len(log.Records)),
		ByCategory: make(map[string]int),
		Stats: Stats{
			Moved:   log.Stats.Success,
			Skipped: log.Stats.Skipped,
			Failed:  log.Stats.Failed,
		},
	}
	for _, rec := range log.Records {
		row := Row{
			Status:   string(rec.Status),
			Category: rec.Category,
			Source:   rec.SourcePath,
			Dest:     rec.DestPath,
			Note:     rec.Error,
		}
		if rec.HashVerified != nil && !*rec.HashVerified {
			row.Note = "hash mismatch after move"
		}
		r.Rows = append(r.Rows, row)
		if rec.Status == types.StatusMoved {
			r.ByCategory[rec.Category]++
		}
	}
	return r
}

// FromRollbackLog builds a report for a reversal pass.
func FromRollbackLog(source string, log *types.RollbackLog) *Report {
	r := &Report{
		Operation: "rollback",
		Source:    source,
		DryRun:    log.DryRun,
		Timestamp: log.Timestamp,
		Rows:      make([]Row, 0, len(log.Records)),
		Stats: Stats{
			Restored: log.Stats.Restored,
			Skipped:  log.Stats.Skipped,
			Failed:   log.Stats.Failed,
		},
	}
	for _, rec := range log.Records {
		r.Rows = append(r.Rows, Row{
			Status: string(rec.Status),
			Source: rec.SourcePath,
			Dest:   rec.DestPath,
			Note:   rec.Error,
		})
	}
	return r
}
