package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/jamesainslie/tidy/pkg/tidy/checksum"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("lists top-level regular files only", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		writeFile(t, root, "a.pdf", "alpha")
		writeFile(t, root, "b.png", "beta")
		nested := filepath.Join(root, "subdir")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, nested, "hidden.pdf", "nested")

		inv, err := New(Options{Root: root}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(inv) != 2 {
			t.Fatalf("len = %d, want 2 (directories not descended)", len(inv))
		}
		for _, rec := range inv {
			if filepath.Dir(rec.SourcePath) != root {
				t.Errorf("record %q outside top level", rec.SourcePath)
			}
		}
	})

	t.Run("recursive walks nested directories", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		writeFile(t, root, "top.pdf", "top")
		nested := filepath.Join(root, "a", "b")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}
		deep := writeFile(t, nested, "deep.png", "deep")

		inv, err := New(Options{Root: root, Recursive: true}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(inv) != 2 {
			t.Fatalf("len = %d, want 2", len(inv))
		}
		found := false
		for _, rec := range inv {
			if rec.SourcePath == deep {
				found = true
			}
		}
		if !found {
			t.Errorf("nested file %s not in inventory", deep)
		}
	})

	t.Run("results sorted by source path", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		writeFile(t, root, "zebra.txt", "z")
		writeFile(t, root, "apple.txt", "a")
		writeFile(t, root, "mango.txt", "m")

		inv, err := New(Options{Root: root}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !sort.SliceIsSorted(inv, func(i, j int) bool {
			return inv[i].SourcePath < inv[j].SourcePath
		}) {
			t.Errorf("inventory not sorted: %v", inv)
		}
	})

	t.Run("filters files below min size", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		writeFile(t, root, "small.txt", "ab")
		big := writeFile(t, root, "big.txt", "0123456789")

		inv, err := New(Options{Root: root, MinSize: 5}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(inv) != 1 {
			t.Fatalf("len = %d, want 1", len(inv))
		}
		if inv[0].SourcePath != big {
			t.Errorf("kept %q, want %q", inv[0].SourcePath, big)
		}
	})

	t.Run("records size and modification time", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := writeFile(t, root, "a.txt", "12345")

		inv, err := New(Options{Root: root}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		rec := inv[0]
		if rec.SourcePath != path {
			t.Errorf("SourcePath = %q, want %q", rec.SourcePath, path)
		}
		if rec.SizeBytes != 5 {
			t.Errorf("SizeBytes = %d, want 5", rec.SizeBytes)
		}
		if rec.ModifiedTime.IsZero() {
			t.Error("ModifiedTime is zero")
		}
		if rec.ContentHash != "" {
			t.Errorf("ContentHash = %q, want empty without WithHash", rec.ContentHash)
		}
	})

	t.Run("populates hashes on request", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := writeFile(t, root, "a.txt", "content")

		want, err := checksum.File(path)
		if err != nil {
			t.Fatal(err)
		}

		inv, err := New(Options{Root: root, WithHash: true}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if inv[0].ContentHash != want {
			t.Errorf("ContentHash = %q, want %q", inv[0].ContentHash, want)
		}
	})

	t.Run("skips symlinks", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("symlink creation needs privileges on windows")
		}
		root := t.TempDir()

		real := writeFile(t, root, "real.txt", "content")
		if err := os.Symlink(real, filepath.Join(root, "link.txt")); err != nil {
			t.Fatal(err)
		}

		inv, err := New(Options{Root: root}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(inv) != 1 {
			t.Fatalf("len = %d, want 1 (symlink skipped)", len(inv))
		}
		if inv[0].SourcePath != real {
			t.Errorf("kept %q, want %q", inv[0].SourcePath, real)
		}
	})

	t.Run("empty directory yields empty inventory", func(t *testing.T) {
		t.Parallel()

		inv, err := New(Options{Root: t.TempDir()}).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if inv == nil {
			t.Fatal("inventory is nil, want empty slice")
		}
		if len(inv) != 0 {
			t.Errorf("len = %d, want 0", len(inv))
		}
	})

	t.Run("missing root is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := New(Options{Root: filepath.Join(t.TempDir(), "absent")}).Scan(context.Background())
		if err == nil {
			t.Fatal("Scan() error = nil, want error")
		}
	})

	t.Run("file root is fatal", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := writeFile(t, root, "file.txt", "not a dir")

		_, err := New(Options{Root: path}).Scan(context.Background())
		if err == nil {
			t.Fatal("Scan() error = nil, want error")
		}
	})

	t.Run("cancelled context aborts the listing", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "a.txt", "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(Options{Root: root}).Scan(ctx)
		if err == nil {
			t.Fatal("Scan() error = nil, want context error")
		}
	})
}
