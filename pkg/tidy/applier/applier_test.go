package applier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/tidy/pkg/tidy/checksum"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// writeFile creates a file with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := checksum.File(path)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("moves files and creates category directories", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "report.pdf", "content")
		dest := filepath.Join(target, "Documents", "report.pdf")

		log := New(Options{}).Run(types.Plan{
			{SourcePath: source, DestPath: dest, Category: "Documents"},
		})

		if log.Stats.Success != 1 || log.Stats.Failed != 0 || log.Stats.Skipped != 0 {
			t.Fatalf("Stats = %+v, want 1 success", log.Stats)
		}
		if log.Records[0].Status != types.StatusMoved {
			t.Errorf("Status = %q, want moved", log.Records[0].Status)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("destination not created: %v", err)
		}
		if _, err := os.Stat(source); !os.IsNotExist(err) {
			t.Errorf("source still exists after move")
		}
	})

	t.Run("dry run records moves without touching the filesystem", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "content")
		dest := filepath.Join(target, "Documents", "a.pdf")

		log := New(Options{DryRun: true}).Run(types.Plan{
			{SourcePath: source, DestPath: dest, Category: "Documents"},
		})

		if !log.DryRun {
			t.Error("log.DryRun = false, want true")
		}
		if log.Stats.Success != 1 {
			t.Errorf("Stats.Success = %d, want plan size 1", log.Stats.Success)
		}
		if _, err := os.Stat(source); err != nil {
			t.Errorf("source was touched during dry run: %v", err)
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Errorf("destination was created during dry run")
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("target directory not empty after dry run: %v", entries)
		}
	})

	t.Run("skips missing sources", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		log := New(Options{}).Run(types.Plan{
			{
				SourcePath: filepath.Join(t.TempDir(), "gone.pdf"),
				DestPath:   filepath.Join(target, "Documents", "gone.pdf"),
				Category:   "Documents",
			},
		})

		rec := log.Records[0]
		if rec.Status != types.StatusSkipped {
			t.Fatalf("Status = %q, want skipped", rec.Status)
		}
		if rec.Error != "source missing" {
			t.Errorf("Error = %q, want %q", rec.Error, "source missing")
		}
		if log.Stats.Skipped != 1 {
			t.Errorf("Stats.Skipped = %d, want 1", log.Stats.Skipped)
		}
	})

	t.Run("never clobbers an existing destination", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "report.pdf", "incoming")
		docs := filepath.Join(target, "Documents")
		if err := os.MkdirAll(docs, 0o755); err != nil {
			t.Fatal(err)
		}
		dest := writeFile(t, docs, "report.pdf", "precious")

		log := New(Options{}).Run(types.Plan{
			{SourcePath: source, DestPath: dest, Category: "Documents"},
		})

		if log.Records[0].Status != types.StatusSkipped {
			t.Fatalf("Status = %q, want skipped", log.Records[0].Status)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "precious" {
			t.Errorf("existing destination was overwritten")
		}
		if _, err := os.Stat(source); err != nil {
			t.Errorf("source was removed despite skip: %v", err)
		}
	})

	t.Run("re-running an applied plan skips everything", func(t *testing.T) {
		t.Parallel()
		target := t.TempDir()

		// File already organized: source equals destination.
		docs := filepath.Join(target, "Documents")
		if err := os.MkdirAll(docs, 0o755); err != nil {
			t.Fatal(err)
		}
		placed := writeFile(t, docs, "report.pdf", "content")

		plan := types.Plan{
			{SourcePath: placed, DestPath: placed, Category: "Documents"},
		}

		log := New(Options{}).Run(plan)
		rec := log.Records[0]
		if rec.Status != types.StatusSkipped {
			t.Fatalf("Status = %q, want skipped", rec.Status)
		}
		if rec.Error != "already at destination" {
			t.Errorf("Error = %q, want %q", rec.Error, "already at destination")
		}
		if _, err := os.Stat(placed); err != nil {
			t.Errorf("file disappeared on idempotent re-run: %v", err)
		}
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		t.Parallel()
		if os.Getuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		src := t.TempDir()
		target := t.TempDir()

		first := writeFile(t, src, "a.pdf", "a")
		blocked := writeFile(t, src, "b.pdf", "b")
		third := writeFile(t, src, "c.pdf", "c")

		// A read-only category directory fails the rename into it.
		roDir := filepath.Join(target, "ReadOnly")
		if err := os.MkdirAll(roDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(roDir, 0o555); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chmod(roDir, 0o755) })

		log := New(Options{}).Run(types.Plan{
			{SourcePath: first, DestPath: filepath.Join(target, "Documents", "a.pdf"), Category: "Documents"},
			{SourcePath: blocked, DestPath: filepath.Join(roDir, "b.pdf"), Category: "ReadOnly"},
			{SourcePath: third, DestPath: filepath.Join(target, "Documents", "c.pdf"), Category: "Documents"},
		})

		if log.Stats.Failed != 1 {
			t.Fatalf("Stats.Failed = %d, want exactly 1", log.Stats.Failed)
		}
		if log.Stats.Success != 2 {
			t.Errorf("Stats.Success = %d, want 2", log.Stats.Success)
		}
		if log.Records[1].Status != types.StatusFailed {
			t.Errorf("blocked record Status = %q, want failed", log.Records[1].Status)
		}
		if log.Records[1].Error == "" {
			t.Error("failed record has no error message")
		}
	})

	t.Run("unreadable destination parent fails instead of moving", func(t *testing.T) {
		t.Parallel()
		if os.Getuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "content")

		// A parent directory without search permission makes the existence
		// of the destination unknowable.
		docs := filepath.Join(target, "Documents")
		if err := os.MkdirAll(docs, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(docs, 0o000); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chmod(docs, 0o755) })

		log := New(Options{}).Run(types.Plan{
			{SourcePath: source, DestPath: filepath.Join(docs, "a.pdf"), Category: "Documents"},
		})

		rec := log.Records[0]
		if rec.Status != types.StatusFailed {
			t.Fatalf("Status = %q, want failed", rec.Status)
		}
		if !strings.Contains(rec.Error, "stat destination") {
			t.Errorf("Error = %q, want stat destination failure", rec.Error)
		}
		if _, err := os.Stat(source); err != nil {
			t.Errorf("source was moved despite unknowable destination: %v", err)
		}
	})

	t.Run("verifies hashes after moving", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "content")
		hash := mustHash(t, source)
		dest := filepath.Join(target, "Documents", "a.pdf")

		log := New(Options{VerifyHash: true}).Run(types.Plan{
			{SourcePath: source, DestPath: dest, Category: "Documents", ContentHash: hash},
		})

		rec := log.Records[0]
		if rec.Status != types.StatusMoved {
			t.Fatalf("Status = %q, want moved", rec.Status)
		}
		if rec.HashVerified == nil || !*rec.HashVerified {
			t.Errorf("HashVerified = %v, want true", rec.HashVerified)
		}
	})

	t.Run("flags corruption without reverting the move", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "content")
		dest := filepath.Join(target, "Documents", "a.pdf")

		// Hash recorded from different bytes simulates corruption between
		// scan and apply.
		log := New(Options{VerifyHash: true}).Run(types.Plan{
			{SourcePath: source, DestPath: dest, Category: "Documents", ContentHash: "deadbeef"},
		})

		rec := log.Records[0]
		if rec.Status != types.StatusMoved {
			t.Fatalf("Status = %q, want moved (mismatch must not revert)", rec.Status)
		}
		if rec.HashVerified == nil || *rec.HashVerified {
			t.Errorf("HashVerified = %v, want false", rec.HashVerified)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("moved file was reverted on mismatch: %v", err)
		}
	})

	t.Run("no hash means no verification claim", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "content")

		log := New(Options{VerifyHash: true}).Run(types.Plan{
			{SourcePath: source, DestPath: filepath.Join(target, "Documents", "a.pdf"), Category: "Documents"},
		})

		if log.Records[0].HashVerified != nil {
			t.Errorf("HashVerified = %v, want nil when no hash was recorded", log.Records[0].HashVerified)
		}
	})

	t.Run("stats always match record counts", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		target := t.TempDir()

		source := writeFile(t, src, "a.pdf", "a")
		missing := filepath.Join(src, "missing.pdf")

		log := New(Options{}).Run(types.Plan{
			{SourcePath: source, DestPath: filepath.Join(target, "Documents", "a.pdf"), Category: "Documents"},
			{SourcePath: missing, DestPath: filepath.Join(target, "Documents", "missing.pdf"), Category: "Documents"},
		})

		if log.Stats != log.CountStats() {
			t.Errorf("Stats = %+v, CountStats() = %+v", log.Stats, log.CountStats())
		}
	})

	t.Run("empty plan still produces a log", func(t *testing.T) {
		t.Parallel()

		log := New(Options{}).Run(types.Plan{})
		if log == nil {
			t.Fatal("Run() returned nil for empty plan")
		}
		if len(log.Records) != 0 {
			t.Errorf("len(Records) = %d, want 0", len(log.Records))
		}
		if log.Timestamp.IsZero() {
			t.Error("log has no timestamp")
		}
	})
}
