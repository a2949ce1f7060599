package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Path    string `mapstructure:"path"`
	Console string `mapstructure:"console"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	SourceDir  string `mapstructure:"source_dir"`
	TargetRoot string `mapstructure:"target_root"`
	MinSize    string `mapstructure:"min_size"`
	Recursive  bool   `mapstructure:"recursive"`
	Hash       bool   `mapstructure:"hash"`

	// Categories overrides or extends the built-in extension table.
	Categories map[string][]string `mapstructure:"categories"`

	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/tidy/config.yaml
//   - $HOME/.config/tidy/config.yaml
//
// Environment variables are prefixed with TIDY_ (e.g., TIDY_TARGET_ROOT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "tidy"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "tidy"))

	v.SetEnvPrefix("TIDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source_dir", DefaultSourceDir)
	v.SetDefault("target_root", DefaultTargetRoot)
	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("recursive", false)
	v.SetDefault("hash", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", defaultHistoryDir())
	v.SetDefault("history.retention_days", DefaultRetentionDays)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.console", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.SourceDir, &cfg.TargetRoot, &cfg.History.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "tidy"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tidy"), nil
}

// defaultHistoryDir returns the default run history directory,
// $XDG_DATA_HOME/tidy/history.
func defaultHistoryDir() string {
	return filepath.Join(xdg.DataHome, "tidy", "history")
}

// StateDir returns $XDG_STATE_HOME/tidy/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "tidy")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file if none exists.
func WriteDefault() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Tidy Organizer Configuration

# Directory scanned when none is specified
source_dir: %s

# Base directory for organized category folders
target_root: %s

# Minimum file size to include in scans (0 = everything)
min_size: "%s"

# Scan subdirectories too
recursive: false

# Compute SHA-256 hashes during scans (enables --verify-hash at apply time)
hash: false

# Extension table overrides, merged over the built-in categories, e.g.:
# categories:
#   Ebooks: [.epub, .mobi]

# Run history settings
history:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/tidy/tidy.log)
  path: ""
  # Mirror logs to stderr at this level (empty disables)
  console: ""
`, DefaultSourceDir, DefaultTargetRoot, DefaultMinSize, defaultHistoryDir(), DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// CategoryTable merges the configured category overrides over the base
// table. Configured categories replace same-named base categories entirely.
func (c *Config) CategoryTable(base map[string][]string) map[string][]string {
	if len(c.Categories) == 0 {
		return base
	}
	merged := make(map[string][]string, len(base)+len(c.Categories))
	for cat, exts := range base {
		merged[cat] = exts
	}
	for cat, exts := range c.Categories {
		merged[cat] = exts
	}
	return merged
}
