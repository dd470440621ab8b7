// Package config loads gnawtree's configuration, ported from the
// teacher's internal/config.LoadConfig (environment-variable reads with
// defaults) and extended with an optional .gnawtree.yaml project file,
// the same way providers/structured/yaml decodes language source.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings every command-line entry point needs:
// where the database lives, where backups and tags are stored, and the
// defaults list/diff operations fall back to absent an explicit flag.
type Config struct {
	DatabaseDSN string `yaml:"database_dsn"`
	BackupDir   string `yaml:"backup_dir"`
	TagsFile    string `yaml:"tags_file"`

	ListDepth int `yaml:"list_depth"`
	ListLimit int `yaml:"list_limit"`

	DiffContext int  `yaml:"diff_context"`
	ColorDiff   bool `yaml:"color_diff"`
}

// defaults mirrors the teacher's pattern of setting a sane value before
// any environment or file override is applied.
func defaults() *Config {
	return &Config{
		DatabaseDSN: ".gnawtree/gnawtree.db",
		BackupDir:   ".gnawtree/backups",
		TagsFile:    ".gnawtree/tags.json",
		ListDepth:   4,
		ListLimit:   1000,
		DiffContext: 3,
		ColorDiff:   true,
	}
}

// Load builds a Config for the project rooted at root: defaults, then
// root/.gnawtree.yaml if present, then environment variables (which take
// final precedence, matching internal/config.LoadConfig's env-first
// posture). A .env file in root is loaded into the process environment
// first, the way cmd/gnawtree's own entry point expects.
func Load(root string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg := defaults()
	cfg.DatabaseDSN = filepath.Join(root, cfg.DatabaseDSN)
	cfg.BackupDir = filepath.Join(root, cfg.BackupDir)
	cfg.TagsFile = filepath.Join(root, cfg.TagsFile)

	if err := applyYAMLFile(cfg, filepath.Join(root, ".gnawtree.yaml")); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GNAWTREE_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("GNAWTREE_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("GNAWTREE_TAGS_FILE"); v != "" {
		cfg.TagsFile = v
	}
	if v := os.Getenv("GNAWTREE_LIST_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ListDepth = n
		}
	}
	if v := os.Getenv("GNAWTREE_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ListLimit = n
		}
	}
	if v := os.Getenv("GNAWTREE_DIFF_CONTEXT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DiffContext = n
		}
	}
	if v := os.Getenv("GNAWTREE_COLOR_DIFF"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ColorDiff = b
		}
	}
}
