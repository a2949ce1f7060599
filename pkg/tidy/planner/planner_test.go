package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

func record(path string) types.FileRecord {
	return types.FileRecord{
		SourcePath:   path,
		SizeBytes:    1,
		ModifiedTime: time.Now(),
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("routes files to category folders", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		inv := types.Inventory{
			record("/src/report.pdf"),
			record("/src/photo.JPG"),
			record("/src/mystery.bin"),
		}

		plan, err := New(target, nil).Build(inv)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(plan) != 3 {
			t.Fatalf("len(plan) = %d, want 3", len(plan))
		}

		want := []struct {
			category string
			dest     string
		}{
			{"Documents", filepath.Join(target, "Documents", "report.pdf")},
			{"Images", filepath.Join(target, "Images", "photo.JPG")},
			{"Other", filepath.Join(target, "Other", "mystery.bin")},
		}
		for i, w := range want {
			if plan[i].Category != w.category {
				t.Errorf("plan[%d].Category = %q, want %q", i, plan[i].Category, w.category)
			}
			if plan[i].DestPath != w.dest {
				t.Errorf("plan[%d].DestPath = %q, want %q", i, plan[i].DestPath, w.dest)
			}
		}
	})

	t.Run("preserves inventory order", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		inv := types.Inventory{
			record("/src/z.pdf"),
			record("/src/a.pdf"),
		}

		plan, err := New(target, nil).Build(inv)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if plan[0].SourcePath != "/src/z.pdf" || plan[1].SourcePath != "/src/a.pdf" {
			t.Errorf("plan order does not follow inventory order: %v", plan)
		}
	})

	t.Run("identical basenames get numbered destinations", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		inv := types.Inventory{
			record("/a/report.pdf"),
			record("/b/report.pdf"),
			record("/c/report.pdf"),
		}

		plan, err := New(target, nil).Build(inv)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		wantDests := []string{
			filepath.Join(target, "Documents", "report.pdf"),
			filepath.Join(target, "Documents", "report (1).pdf"),
			filepath.Join(target, "Documents", "report (2).pdf"),
		}
		for i, want := range wantDests {
			if plan[i].DestPath != want {
				t.Errorf("plan[%d].DestPath = %q, want %q", i, plan[i].DestPath, want)
			}
		}
	})

	t.Run("destination paths are pairwise unique", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		inv := types.Inventory{
			record("/a/x.txt"),
			record("/b/x.txt"),
			record("/c/y.txt"),
			record("/d/y.txt"),
			record("/e/x.txt"),
		}

		plan, err := New(target, nil).Build(inv)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		seen := make(map[string]struct{})
		for _, op := range plan {
			if _, dup := seen[op.DestPath]; dup {
				t.Errorf("duplicate destination %q", op.DestPath)
			}
			seen[op.DestPath] = struct{}{}
		}
	})

	t.Run("existing file on disk forces a numbered destination", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		docs := filepath.Join(target, "Documents")
		if err := os.MkdirAll(docs, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(docs, "report.pdf"), []byte("existing"), 0o644); err != nil {
			t.Fatal(err)
		}

		src := t.TempDir()
		srcFile := filepath.Join(src, "report.pdf")
		if err := os.WriteFile(srcFile, []byte("incoming"), 0o644); err != nil {
			t.Fatal(err)
		}

		plan, err := New(target, nil).Build(types.Inventory{record(srcFile)})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		want := filepath.Join(docs, "report (1).pdf")
		if plan[0].DestPath != want {
			t.Errorf("DestPath = %q, want %q", plan[0].DestPath, want)
		}
	})

	t.Run("file already at its destination keeps it", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		docs := filepath.Join(target, "Documents")
		if err := os.MkdirAll(docs, 0o755); err != nil {
			t.Fatal(err)
		}
		placed := filepath.Join(docs, "report.pdf")
		if err := os.WriteFile(placed, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}

		plan, err := New(target, nil).Build(types.Inventory{record(placed)})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if plan[0].DestPath != placed {
			t.Errorf("DestPath = %q, want %q (no disambiguator for the file itself)", plan[0].DestPath, placed)
		}
	})

	t.Run("carries content hashes through", func(t *testing.T) {
		t.Parallel()

		rec := record("/src/file.txt")
		rec.ContentHash = "abc123"

		plan, err := New(t.TempDir(), nil).Build(types.Inventory{rec})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if plan[0].ContentHash != "abc123" {
			t.Errorf("ContentHash = %q, want %q", plan[0].ContentHash, "abc123")
		}
	})

	t.Run("rejects records without a source path", func(t *testing.T) {
		t.Parallel()

		_, err := New(t.TempDir(), nil).Build(types.Inventory{{SizeBytes: 1}})
		if err == nil {
			t.Fatal("Build() error = nil, want error for missing source_path")
		}
	})
}

func TestNumberedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		n    int
		want string
	}{
		{"report.pdf", 1, "report (1).pdf"},
		{"report.pdf", 12, "report (12).pdf"},
		{"archive.tar.gz", 1, "archive.tar (1).gz"},
		{"README", 2, "README (2)"},
		{".gitignore", 1, ".gitignore (1)"},
		{".env", 3, ".env (3)"},
	}
	for _, tt := range tests {
		if got := numberedName(tt.base, tt.n); got != tt.want {
			t.Errorf("numberedName(%q, %d) = %q, want %q", tt.base, tt.n, got, tt.want)
		}
	}
}
