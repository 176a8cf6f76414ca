// Package config loads the edition tool's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store configures the versioned table store.
type Store struct {
	// Dir holds the database and the snapshot blobs. Default: ~/.local/share/juniper-edition
	Dir    string `toml:"dir"`
	DBFile string `toml:"db_file"`
	// LockTimeoutSeconds bounds the wait for the writer lock.
	LockTimeoutSeconds int `toml:"lock_timeout_seconds"`
}

// Log configures structured logging.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // auto, json or text
}

// Cache configures edition memoization.
type Cache struct {
	MaxEntries int `toml:"max_entries"`
	TTLSeconds int `toml:"ttl_seconds"`
}

// Collation configures alignment and tokenization.
type Collation struct {
	Lang             string   `toml:"lang"`
	Normalizers      []string `toml:"normalizers"`
	ExtraPunctuation string   `toml:"extra_punctuation"`
	// MaxEditCost bounds each pairwise diff; 0 means unbounded.
	MaxEditCost int `toml:"max_edit_cost"`
	// InsertColumnRounds bounds automatic column insertion during repair.
	InsertColumnRounds int `toml:"insert_column_rounds"`
}

// Config encapsulates all configuration values.
type Config struct {
	Store     Store     `toml:"store"`
	Log       Log       `toml:"log"`
	Cache     Cache     `toml:"cache"`
	Collation Collation `toml:"collation"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: Store{
			Dir:                "~/.local/share/juniper-edition",
			DBFile:             "tables.db",
			LockTimeoutSeconds: 10,
		},
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
		Cache: Cache{
			MaxEntries: 64,
		},
		Collation: Collation{
			Lang:               "la",
			Normalizers:        []string{"nfc"},
			InsertColumnRounds: 8,
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/juniper-edition/config.toml")
}

// Load locates, parses, normalizes and validates a configuration file. A
// missing file yields the defaults. It returns the resolved path and whether
// the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("edition.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// DBPath returns the table store database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.Store.Dir, c.Store.DBFile)
}

// SnapshotDir returns the snapshot blob directory.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.Store.Dir, "snapshots")
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
