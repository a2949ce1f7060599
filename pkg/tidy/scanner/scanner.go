// Package scanner produces an Inventory from a directory snapshot.
// The default mode lists the top level of the directory only, matching the
// flat layout of a downloads folder; recursive mode walks the whole tree
// with fastwalk.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/tidy/pkg/tidy/checksum"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

var logger = logging.Get("scanner")

// Scanner walks a directory and builds an Inventory.
type Scanner struct {
	opts Options

	records   types.Inventory
	recordsMu sync.Mutex
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts, records: types.Inventory{}}
}

// Scan performs the scan and returns the inventory, sorted by source path
// so repeated scans of an unchanged tree produce identical manifests.
// Per-file errors (unreadable file, stat failure) are logged and the file is
// skipped; only a missing or invalid root is fatal.
func (s *Scanner) Scan(ctx context.Context) (types.Inventory, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "scan", Path: root, Err: errors.New("not a directory")}
	}

	if s.opts.Recursive {
		err = s.walk(ctx, root)
	} else {
		err = s.list(ctx, root)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(s.records, func(i, j int) bool {
		return s.records[i].SourcePath < s.records[j].SourcePath
	})
	logger.Info("scan complete", "root", root, "files", len(s.records))
	return s.records, nil
}

// list scans the top level of root only.
func (s *Scanner) list(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		s.processFile(filepath.Join(root, entry.Name()), entry)
	}
	return nil
}

// walk scans the whole tree under root using fastwalk.
func (s *Scanner) walk(ctx context.Context, root string) error {
	conf := fastwalk.Config{
		Follow: false, // don't follow symlinks
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if walkCtx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		s.processFile(path, d)
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return err
	}
	return ctx.Err()
}

// processFile stats one regular file and appends its record.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		logger.Warn("stat failed", "path", path, "error", err)
		return
	}
	if info.Size() < s.opts.MinSize {
		return
	}

	rec := types.FileRecord{
		SourcePath:   path,
		SizeBytes:    info.Size(),
		ModifiedTime: info.ModTime(),
	}

	if s.opts.WithHash {
		hash, err := checksum.File(path)
		if err != nil {
			// The record still goes in; an absent hash is never treated as
			// a successful verification downstream.
			logger.Warn("hash failed", "path", path, "error", err)
		} else {
			rec.ContentHash = hash
		}
	}

	s.recordsMu.Lock()
	s.records = append(s.records, rec)
	s.recordsMu.Unlock()
}
