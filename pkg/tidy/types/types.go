// Package types provides the core data types for the tidy organizer pipeline.
// It defines the manifest entities passed between the scan, plan, apply, and
// rollback stages, along with utility functions for parsing and formatting
// file sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// FileRecord describes one file discovered by a scan.
// It captures the metadata the planner needs plus an optional content hash
// for post-move integrity verification.
type FileRecord struct {
	// SourcePath is the absolute path to the file at scan time.
	SourcePath string `json:"source_path"`

	// SizeBytes is the file size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// ModifiedTime is the last modification time of the file.
	ModifiedTime time.Time `json:"modified_time"`

	// ContentHash is the SHA-256 hex digest of the file contents.
	// Empty when hashing was not requested; an absent hash must never be
	// treated as a successful verification.
	ContentHash string `json:"content_hash,omitempty"`
}

// HumanSize returns the file size formatted as a human-readable string.
func (f *FileRecord) HumanSize() string {
	return FormatSize(f.SizeBytes)
}

// Inventory is a snapshot of the source directory: the output of a scan and
// the input to the planner. It serializes as a plain JSON array.
type Inventory []FileRecord

// TotalBytes returns the sum of all record sizes.
func (inv Inventory) TotalBytes() int64 {
	var total int64
	for _, r := range inv {
		total += r.SizeBytes
	}
	return total
}

// MoveOperation is one proposed move in a plan. Destination paths are unique
// across the plan and always lie under targetRoot/category/.
type MoveOperation struct {
	// SourcePath is the file's current location.
	SourcePath string `json:"source_path"`

	// DestPath is the resolved, collision-free destination.
	DestPath string `json:"dest_path"`

	// Category is the classification bucket the destination lives under.
	Category string `json:"category"`

	// ContentHash carries the scan-time hash through to the applier so a
	// post-move verification does not depend on the inventory file.
	ContentHash string `json:"content_hash,omitempty"`
}

// Plan is an ordered list of move operations. Order matters: it fixes the
// collision tie-break and the rollback unwind order.
type Plan []MoveOperation

// ApplyStatus is the outcome of a single apply operation.
type ApplyStatus string

// Apply outcomes.
const (
	// StatusMoved means the file was moved (or would have been, in a dry run).
	StatusMoved ApplyStatus = "moved"
	// StatusSkipped means the operation was not performed and nothing changed.
	StatusSkipped ApplyStatus = "skipped"
	// StatusFailed means the move was attempted and did not complete.
	StatusFailed ApplyStatus = "failed"
)

// ApplyRecord is the outcome of one move operation.
// Only records with StatusMoved are eligible for rollback.
type ApplyRecord struct {
	SourcePath string      `json:"source_path"`
	DestPath   string      `json:"dest_path"`
	Category   string      `json:"category"`
	Status     ApplyStatus `json:"status"`

	// Error holds the failure or skip reason, empty on clean moves.
	Error string `json:"error,omitempty"`

	// HashVerified reports the post-move integrity check. Nil means the
	// check was not performed (no hash available or verification off).
	HashVerified *bool `json:"hash_verified,omitempty"`

	// ContentHash is the scan-time hash carried through from the plan,
	// used by rollback to confirm content identity before reversing.
	ContentHash string `json:"content_hash,omitempty"`
}

// ApplyStats aggregates apply outcomes by status.
type ApplyStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ApplyLog is the durable record of an execution pass. It is written once
// and never mutated; rollback reads it but does not edit it in place.
type ApplyLog struct {
	Timestamp time.Time     `json:"timestamp"`
	DryRun    bool          `json:"dry_run"`
	Stats     ApplyStats    `json:"stats"`
	Records   []ApplyRecord `json:"records"`
}

// CountStats recomputes the stats from the records. The invariant is that
// Stats always equals the result of CountStats.
func (l *ApplyLog) CountStats() ApplyStats {
	var s ApplyStats
	for _, r := range l.Records {
		switch r.Status {
		case StatusMoved:
			s.Success++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// RollbackStatus is the outcome of reversing a single apply record.
type RollbackStatus string

// Rollback outcomes.
const (
	// StatusRestored means the file was moved back to its original path.
	StatusRestored RollbackStatus = "restored"
	// StatusRollbackSkipped means the apply record had nothing to undo.
	StatusRollbackSkipped RollbackStatus = "skipped"
	// StatusRollbackFailed means the reversal was refused or did not complete.
	StatusRollbackFailed RollbackStatus = "failed"
)

// RollbackRecord is the outcome of reversing one apply record. SourcePath
// and DestPath keep the apply orientation: SourcePath is the original
// location the file was restored to.
type RollbackRecord struct {
	SourcePath string         `json:"source_path"`
	DestPath   string         `json:"dest_path"`
	Status     RollbackStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
}

// RollbackStats aggregates rollback outcomes by status.
type RollbackStats struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// RollbackLog records the reversal outcomes, one entry per apply record.
type RollbackLog struct {
	Timestamp time.Time        `json:"timestamp"`
	DryRun    bool             `json:"dry_run"`
	Stats     RollbackStats    `json:"stats"`
	Records   []RollbackRecord `json:"records"`
}

// CountStats recomputes the stats from the records.
func (l *RollbackLog) CountStats() RollbackStats {
	var s RollbackStats
	for _, r := range l.Records {
		switch r.Status {
		case StatusRestored:
			s.Restored++
		case StatusRollbackFailed:
			s.Failed++
		case StatusRollbackSkipped:
			s.Skipped++
		}
	}
	return s
}

// sizePattern matches size strings like "100M", "2G", "1.5GiB".
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string ("512B", "100K", "1.5GiB")
// and returns the size in bytes. Decimal values are truncated to the
// nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
