// Package rollback reverses the moves recorded in an ApplyLog, restoring
// every moved file to its original path and optionally removing category
// directories left empty.
package rollback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/tidy/pkg/tidy/checksum"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

var logger = logging.Get("rollback")

// ErrDryRunLog is returned when the apply log records a dry run: nothing
// actually moved, so there is nothing to undo.
var ErrDryRunLog = errors.New("apply log records a dry run, nothing to roll back")

// Options controls rollback behavior.
type Options struct {
	// DryRun simulates the reversal without touching the filesystem.
	DryRun bool

	// Cleanup removes category directories this rollback emptied.
	// Removal is best-effort and never fails the run.
	Cleanup bool
}

// Engine reverses apply logs. It always operates on an explicitly supplied
// log; selecting which log to roll back belongs to the caller.
type Engine struct {
	opts Options
}

// New creates an Engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Run reverses the moved records of applyLog in reverse apply order and
// returns a RollbackLog with exactly one record per apply record.
func (e *Engine) Run(applyLog *types.ApplyLog) (*types.RollbackLog, error) {
	if applyLog.DryRun {
		return nil, ErrDryRunLog
	}

	log := &types.RollbackLog{
		Timestamp: time.Now().UTC(),
		DryRun:    e.opts.DryRun,
		Records:   make([]types.RollbackRecord, 0, len(applyLog.Records)),
	}

	// Category directories this run moved files out of, candidates for
	// cleanup afterwards.
	touched := make(map[string]struct{})

	// Reverse order unwinds nested directory creation correctly.
	for i := len(applyLog.Records) - 1; i >= 0; i-- {
		rec := e.reverse(applyLog.Records[i], touched)
		log.Records = append(log.Records, rec)

		switch rec.Status {
		case types.StatusRestored:
			logger.Info("restored", "path", rec.SourcePath, "dry_run", e.opts.DryRun)
		case types.StatusRollbackFailed:
			logger.Error("restore failed", "path", rec.SourcePath, "error", rec.Error)
		}
	}

	if e.opts.Cleanup && !e.opts.DryRun {
		e.cleanup(touched)
	}

	log.Stats = log.CountStats()
	return log, nil
}

// reverse undoes one apply record.
func (e *Engine) reverse(applied types.ApplyRecord, touched map[string]struct{}) types.RollbackRecord {
	rec := types.RollbackRecord{
		SourcePath: applied.SourcePath,
		DestPath:   applied.DestPath,
	}

	if applied.Status != types.StatusMoved {
		// Nothing moved, nothing to undo. Recorded anyway to keep the 1:1
		// correspondence with the apply log.
		rec.Status = types.StatusRollbackSkipped
		rec.Error = "not moved during apply"
		return rec
	}

	if _, err := os.Lstat(applied.DestPath); err != nil {
		rec.Status = types.StatusRollbackFailed
		rec.Error = "file no longer at destination"
		return rec
	}

	// When a hash was recorded, refuse to move back a file whose content
	// changed: it may be an unrelated file wearing the same name.
	if applied.ContentHash != "" {
		hash, err := checksum.File(applied.DestPath)
		if err != nil {
			rec.Status = types.StatusRollbackFailed
			rec.Error = fmt.Sprintf("verify destination: %v", err)
			return rec
		}
		if hash != applied.ContentHash {
			rec.Status = types.StatusRollbackFailed
			rec.Error = "content changed since apply"
			return rec
		}
	}

	if _, err := os.Lstat(applied.SourcePath); err == nil {
		rec.Status = types.StatusRollbackFailed
		rec.Error = "original location occupied"
		return rec
	}

	touched[filepath.Dir(applied.DestPath)] = struct{}{}

	if e.opts.DryRun {
		rec.Status = types.StatusRestored
		return rec
	}

	if err := os.MkdirAll(filepath.Dir(applied.SourcePath), 0o755); err != nil {
		rec.Status = types.StatusRollbackFailed
		rec.Error = fmt.Sprintf("create original directory: %v", err)
		return rec
	}
	if err := os.Rename(applied.DestPath, applied.SourcePath); err != nil {
		rec.Status = types.StatusRollbackFailed
		rec.Error = fmt.Sprintf("move back: %v", err)
		return rec
	}

	rec.Status = types.StatusRestored
	return rec
}

// cleanup removes now-empty category directories this run touched.
// Failures (including directories refilled by concurrent external writes)
// are logged and ignored.
func (e *Engine) cleanup(touched map[string]struct{}) {
	for dir := range touched {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logger.Warn("cleanup failed", "dir", dir, "error", err)
			continue
		}
		logger.Info("removed empty directory", "dir", dir)
	}
}
