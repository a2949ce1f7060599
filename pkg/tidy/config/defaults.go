// Package config provides configuration management for tidy.
package config

// Default configuration values.
const (
	// DefaultSourceDir is the directory scanned when none is specified.
	DefaultSourceDir = "~/Downloads"

	// DefaultTargetRoot is where category folders are created.
	DefaultTargetRoot = "~/Downloads/Organized"

	// DefaultMinSize includes every file regardless of size.
	DefaultMinSize = "0"

	// DefaultRetentionDays is how long run history entries are kept.
	DefaultRetentionDays = 30
)
