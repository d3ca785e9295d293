// Package config loads and validates the sortd configuration file.
//
// Configuration is YAML, grouped by concern. Absent keys keep their
// defaults; the loaded struct is validated before use so bad values fail at
// startup instead of mid-commit.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	System         SystemConfig         `yaml:"system"`
	File           FileConfig           `yaml:"file"`
	Database       DatabaseConfig       `yaml:"database"`
	VectorStore    VectorStoreConfig    `yaml:"vector_store"`
	SemanticIndex  SemanticIndexConfig  `yaml:"semantic_index"`
	Classification ClassificationConfig `yaml:"classification"`
}

// SystemConfig holds process-wide switches.
type SystemConfig struct {
	DryRun bool `yaml:"dry_run"`
}

// FileConfig controls the Relocator and its link strategies.
type FileConfig struct {
	CleanupEmptyDirs        bool `yaml:"cleanup_empty_dirs"`
	AllowSymlink            bool `yaml:"allow_symlink"`
	AllowShortcut           bool `yaml:"allow_shortcut"`
	PreferHardlinkOnWindows bool `yaml:"prefer_hardlink_on_windows"`
}

// DatabaseConfig locates the audit/status repository.
type DatabaseConfig struct {
	Path        string `yaml:"path" validate:"required"`
	AuditTable  string `yaml:"audit_table" validate:"required"`
	StatusTable string `yaml:"status_table" validate:"required"`
}

// VectorStoreConfig locates the similarity store. An empty address disables
// similarity writes entirely, and no other field is needed then.
type VectorStoreConfig struct {
	Address    string `yaml:"address" validate:"omitempty,url"`
	Collection string `yaml:"collection" validate:"required_with=Address"`
}

// SemanticIndexConfig locates the semantic document index. The path is only
// needed while the index is enabled.
type SemanticIndexConfig struct {
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
	Enabled bool   `yaml:"enabled"`
}

// ClassificationConfig holds the review threshold for the needs-review flag.
type ClassificationConfig struct {
	ReviewThreshold float64 `yaml:"review_threshold" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		File: FileConfig{
			AllowSymlink:  true,
			AllowShortcut: true,
		},
		Database: DatabaseConfig{
			Path:        "data/audit.db",
			AuditTable:  "file_operations",
			StatusTable: "file_status",
		},
		VectorStore: VectorStoreConfig{
			Address:    "http://localhost:8000",
			Collection: "documents",
		},
		SemanticIndex: SemanticIndexConfig{
			Path:    "data/semantic_index.db",
			Enabled: true,
		},
		Classification: ClassificationConfig{
			ReviewThreshold: 0.6,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
