// Package output provides formatters for rendering pipeline stage reports
// in various formats (plain, table, json, yaml, template).
//
// The package uses a registry pattern so formatter implementations can be
// selected by name at runtime:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Row is one record in a stage report: a file the stage scanned, planned,
// moved, or restored.
type Row struct {
	// Status is the record outcome (moved, restored, skipped, failed) or
	// "planned"/"scanned" for the stages that only propose work.
	Status string `json:"status" yaml:"status"`

	// Category is the classification bucket, when known.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Source is the file's original path.
	Source string `json:"source" yaml:"source"`

	// Dest is the destination path, when the stage has one.
	Dest string `json:"dest,omitempty" yaml:"dest,omitempty"`

	// Size is the file size in bytes, when known.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`

	// SizeHuman is the human-readable file size.
	SizeHuman string `json:"size_human,omitempty" yaml:"size_human,omitempty"`

	// Note carries the skip reason, error message, or hash flag.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Stats aggregates row outcomes.
type Stats struct {
	Moved    int `json:"moved,omitempty" yaml:"moved,omitempty"`
	Restored int `json:"restored,omitempty" yaml:"restored,omitempty"`
	Skipped  int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed   int `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Report is the complete output data for one pipeline stage run.
type Report struct {
	// Operation is the stage name: scan, plan, apply, or rollback.
	Operation string `json:"operation" yaml:"operation"`

	// Source is what the stage consumed: a scanned directory or an input
	// manifest path.
	Source string `json:"source" yaml:"source"`

	// Artifact is the manifest the stage wrote, empty when it went to stdout.
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// DryRun reports whether the stage simulated its work.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Timestamp is when the stage ran.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Rows holds the per-record outcomes.
	Rows []Row `json:"rows" yaml:"rows"`

	// Stats aggregates outcomes across rows.
	Stats Stats `json:"stats" yaml:"stats"`

	// ByCategory counts rows per category.
	ByCategory map[string]int `json:"by_category,omitempty" yaml:"by_category,omitempty"`

	// TotalBytes is the sum of known row sizes.
	TotalBytes int64 `json:"total_bytes,omitempty" yaml:"total_bytes,omitempty"`
}

// Categories returns the report's category names in sorted order.
func (r *Report) Categories() []string {
	cats := make([]string, 0, len(r.ByCategory))
	for cat := range r.ByCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Formatter is the interface all output formatters implement.
type Formatter interface {
	// Format writes the formatted report to the buffer.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any existing one of the
// same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
