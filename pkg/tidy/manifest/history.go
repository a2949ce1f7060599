package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation identifies which pipeline stage produced a history entry.
type Operation string

// Pipeline stages recorded in history.
const (
	OpScan     Operation = "scan"
	OpPlan     Operation = "plan"
	OpApply    Operation = "apply"
	OpRollback Operation = "rollback"
)

// EntrySummary aggregates the outcome of a recorded run.
type EntrySummary struct {
	TotalRecords int   `json:"total_records"`
	Success      int   `json:"success"`
	Failed       int   `json:"failed"`
	Skipped      int   `json:"skipped"`
	TotalBytes   int64 `json:"total_bytes,omitempty"`
	DryRun       bool  `json:"dry_run,omitempty"`
}

// Entry is one recorded run. Artifact points at the manifest the run wrote,
// so old runs can be inspected or rolled back later. History never selects
// an artifact on the caller's behalf; rollback always takes an explicit
// apply log path.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Operation Operation    `json:"operation"`
	Artifact  string       `json:"artifact"`
	Summary   EntrySummary `json:"summary"`
}

// History manages the append-only run history on disk, one JSON file per run.
type History struct {
	dir string
	mu  sync.Mutex
}

// NewHistory creates a History rooted at dir. The directory is not created
// until EnsureDir is called.
func NewHistory(dir string) (*History, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &History{dir: dir}, nil
}

// EnsureDir creates the history directory if it does not exist.
func (h *History) EnsureDir() error {
	return os.MkdirAll(h.dir, 0o755)
}

// Record appends an entry for a completed run and returns it.
func (h *History) Record(op Operation, artifact string, summary EntrySummary) (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := &Entry{
		ID:        generateID(op),
		Timestamp: time.Now().UTC(),
		Operation: op,
		Artifact:  artifact,
		Summary:   summary,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}

	path := filepath.Join(h.dir, entry.ID+".json")
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write history entry: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("rename history entry: %w", err)
	}

	return entry, nil
}

// List returns entries sorted by timestamp descending (newest first).
// A limit of 0 or less returns all entries.
func (h *History) List(limit int) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	files, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := h.readEntry(f.Name())
		if err != nil {
			// Unparsable entries are skipped, not fatal.
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves a specific entry by ID.
func (h *History) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, err := h.readEntry(id + ".json")
	if err != nil {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	return entry, nil
}

// Cleanup removes entries older than retentionDays.
func (h *History) Cleanup(retentionDays int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read history directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := h.readEntry(f.Name())
		if err != nil {
			continue
		}
		if entry.Timestamp.Before(cutoff) {
			_ = os.Remove(filepath.Join(h.dir, f.Name()))
		}
	}
	return nil
}

// readEntry reads and parses one history file. Caller holds the lock.
func (h *History) readEntry(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, filename))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// generateID creates an ID like "apply-2026-08-30T10-30-00-1a2b3c4d".
func generateID(op Operation) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s", op, ts, suffix)
}
