// Package planner turns an Inventory into a Plan of collision-free move
// operations.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/tidy/pkg/tidy/classify"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

var logger = logging.Get("planner")

// Planner builds plans against a fixed target root and classifier.
type Planner struct {
	targetRoot string
	classifier *classify.Classifier
}

// New creates a Planner. A nil classifier uses the default table.
func New(targetRoot string, classifier *classify.Classifier) *Planner {
	if classifier == nil {
		classifier = classify.New(nil)
	}
	return &Planner{targetRoot: targetRoot, classifier: classifier}
}

// Build produces a Plan in inventory order. Destination collisions are
// resolved against both earlier operations in the same plan and files
// already present on disk, by appending " (1)", " (2)", … before the
// extension. Files already in their correct category folder still get an
// operation; skipping them is the applier's job.
//
// The planner touches the filesystem only for existence checks. The one
// fatal failure is a malformed inventory record.
func (p *Planner) Build(inv types.Inventory) (types.Plan, error) {
	root, err := filepath.Abs(p.targetRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve target root: %w", err)
	}

	plan := make(types.Plan, 0, len(inv))

	// Occupancy of destination paths claimed by earlier operations. The
	// resolver must be stateful across the whole plan: identical basenames
	// from different source directories land in the same category folder.
	taken := make(map[string]struct{}, len(inv))

	for i, rec := range inv {
		if rec.SourcePath == "" {
			return nil, fmt.Errorf("inventory record %d has no source_path", i)
		}

		category := p.classifier.Classify(rec.SourcePath)
		dest := p.resolveDest(rec.SourcePath, root, category, taken)
		taken[dest] = struct{}{}

		plan = append(plan, types.MoveOperation{
			SourcePath:  rec.SourcePath,
			DestPath:    dest,
			Category:    category,
			ContentHash: rec.ContentHash,
		})
	}

	logger.Info("plan built", "operations", len(plan), "target", root)
	return plan, nil
}

// resolveDest finds the first free destination for a source file.
func (p *Planner) resolveDest(source, root, category string, taken map[string]struct{}) string {
	base := filepath.Base(source)
	candidate := filepath.Join(root, category, base)

	for n := 1; !p.destFree(candidate, source, taken); n++ {
		candidate = filepath.Join(root, category, numberedName(base, n))
	}
	return candidate
}

// destFree reports whether candidate can be claimed for source. A path on
// disk blocks the candidate only when it is a different file: a source
// already sitting at its own destination keeps it, making re-planning
// idempotent.
func (p *Planner) destFree(candidate, source string, taken map[string]struct{}) bool {
	if _, claimed := taken[candidate]; claimed {
		return false
	}

	destInfo, err := os.Lstat(candidate)
	if err != nil {
		// Not on disk (or unreadable, which apply will surface).
		return true
	}
	srcInfo, err := os.Lstat(source)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, destInfo)
}

// numberedName inserts a numeric disambiguator before the extension:
// "report.pdf" → "report (1).pdf". Dotfiles like ".gitignore" have no stem,
// so the suffix goes after the whole name instead.
func numberedName(base string, n int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return fmt.Sprintf("%s (%d)", base, n)
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
