package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidy/pkg/tidy/manifest"
	"github.com/jamesainslie/tidy/pkg/tidy/output"
	"github.com/jamesainslie/tidy/pkg/tidy/scanner"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

var (
	scanDir       string
	scanOut       string
	scanHash      bool
	scanRecursive bool
	scanMinSize   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Snapshot a directory into an inventory manifest",
	Long: `Scan lists the files in a directory and writes an inventory manifest,
the input to 'tidy plan'. With --hash each file also gets a SHA-256 digest,
enabling --verify-hash at apply time and content checks at rollback time.`,
	RunE: runScanCmd,
}

func init() {
	scanCmd.Flags().StringVarP(&scanDir, "directory", "d", "", "directory to scan (default: configured source_dir)")
	scanCmd.Flags().StringVarP(&scanOut, "output", "o", "", "inventory manifest path (default: stdout)")
	scanCmd.Flags().BoolVar(&scanHash, "hash", false, "compute SHA-256 hash for each file")
	scanCmd.Flags().BoolVar(&scanRecursive, "recursive", false, "scan subdirectories too")
	scanCmd.Flags().StringVar(&scanMinSize, "min-size", "", "minimum file size to include (e.g. 1M)")
	rootCmd.AddCommand(scanCmd)
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	dir := scanDir
	if dir == "" {
		dir = cfg.SourceDir
	}

	minSizeStr := scanMinSize
	if minSizeStr == "" {
		minSizeStr = cfg.MinSize
	}
	minSize, err := types.ParseSize(minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid min-size %q: %w", minSizeStr, err)
	}

	s := scanner.New(scanner.Options{
		Root:      dir,
		Recursive: scanRecursive || cfg.Recursive,
		MinSize:   minSize,
		WithHash:  scanHash || cfg.Hash,
	})

	inv, err := s.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	if scanOut != "" {
		if err := manifest.WriteInventory(scanOut, inv); err != nil {
			return err
		}
	} else if err := manifest.Encode(os.Stdout, inv); err != nil {
		return err
	}

	recordHistory(manifest.OpScan, scanOut, manifest.EntrySummary{
		TotalRecords: len(inv),
		TotalBytes:   inv.TotalBytes(),
	})

	if scanOut == "" {
		// The artifact went to stdout; a report would corrupt it.
		return nil
	}
	report := output.FromInventory(dir, inv)
	report.Artifact = scanOut
	return renderReport(report)
}
