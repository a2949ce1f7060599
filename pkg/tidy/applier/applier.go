// Package applier executes a Plan against the filesystem and produces the
// ApplyLog, the durable record rollback depends on. One failed operation
// never aborts the batch, and the log is produced even when every operation
// skipped or failed.
package applier

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/tidy/pkg/tidy/checksum"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

var logger = logging.Get("applier")

// Options controls apply behavior.
type Options struct {
	// DryRun records every operation as moved without touching the
	// filesystem, modeling the outcome for preview.
	DryRun bool

	// VerifyHash recomputes each moved file's hash and compares it with the
	// scan-time hash carried in the plan. Mismatches are reported on the
	// record, never auto-reverted: undoing a move of a file that already
	// changed risks compounding the damage.
	VerifyHash bool
}

// Applier executes plans.
type Applier struct {
	opts Options
}

// New creates an Applier.
func New(opts Options) *Applier {
	return &Applier{opts: opts}
}

// Run executes every operation in plan order and returns the log. Run has
// no fatal path: every per-operation problem becomes a skipped or failed
// record and processing continues.
func (a *Applier) Run(plan types.Plan) *types.ApplyLog {
	log := &types.ApplyLog{
		Timestamp: time.Now().UTC(),
		DryRun:    a.opts.DryRun,
		Records:   make([]types.ApplyRecord, 0, len(plan)),
	}

	for _, op := range plan {
		rec := a.apply(op)
		log.Records = append(log.Records, rec)

		switch rec.Status {
		case types.StatusMoved:
			logger.Info("moved", "source", rec.SourcePath, "dest", rec.DestPath, "dry_run", a.opts.DryRun)
		case types.StatusSkipped:
			logger.Info("skipped", "source", rec.SourcePath, "reason", rec.Error)
		case types.StatusFailed:
			logger.Error("move failed", "source", rec.SourcePath, "error", rec.Error)
		}
	}

	log.Stats = log.CountStats()
	return log
}

// apply performs a single operation.
func (a *Applier) apply(op types.MoveOperation) types.ApplyRecord {
	rec := types.ApplyRecord{
		SourcePath:  op.SourcePath,
		DestPath:    op.DestPath,
		Category:    op.Category,
		ContentHash: op.ContentHash,
	}

	srcInfo, err := os.Lstat(op.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Removed since the scan.
			rec.Status = types.StatusSkipped
			rec.Error = "source missing"
		} else {
			rec.Status = types.StatusFailed
			rec.Error = fmt.Sprintf("stat source: %v", err)
		}
		return rec
	}

	destInfo, err := os.Lstat(op.DestPath)
	if err == nil {
		rec.Status = types.StatusSkipped
		if os.SameFile(srcInfo, destInfo) {
			// Already in place from an earlier run.
			rec.Error = "already at destination"
		} else {
			// Never silently clobber an existing file.
			rec.Error = "destination exists"
		}
		return rec
	}
	if !os.IsNotExist(err) {
		// An unreadable destination cannot be proven free; attempting the
		// rename anyway could clobber whatever is there.
		rec.Status = types.StatusFailed
		rec.Error = fmt.Sprintf("stat destination: %v", err)
		return rec
	}

	if a.opts.DryRun {
		rec.Status = types.StatusMoved
		return rec
	}

	if err := os.MkdirAll(filepath.Dir(op.DestPath), 0o755); err != nil {
		rec.Status = types.StatusFailed
		rec.Error = fmt.Sprintf("create category directory: %v", err)
		return rec
	}

	if err := os.Rename(op.SourcePath, op.DestPath); err != nil {
		rec.Status = types.StatusFailed
		rec.Error = fmt.Sprintf("move: %v", err)
		return rec
	}
	rec.Status = types.StatusMoved

	if a.opts.VerifyHash && op.ContentHash != "" {
		verified := a.verify(op)
		rec.HashVerified = &verified
		if !verified {
			logger.Warn("hash mismatch after move", "dest", op.DestPath)
		}
	}
	return rec
}

// verify rehashes the moved file and compares with the scan-time hash.
func (a *Applier) verify(op types.MoveOperation) bool {
	hash, err := checksum.File(op.DestPath)
	if err != nil {
		logger.Warn("hash verification unreadable", "dest", op.DestPath, "error", err)
		return false
	}
	return hash == op.ContentHash
}
