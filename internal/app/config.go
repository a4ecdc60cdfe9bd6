package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"keygate/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// DBPath is the SQLite database file. The URI form
	// "file::memory:?mode=memory&cache=shared" keeps everything in-process.
	DBPath string `yaml:"db_path"`

	// PoolSize is the SQLite connection pool size.
	PoolSize int `yaml:"pool_size"`

	// Audience tags issued challenges so a response signed for one
	// deployment cannot be replayed against another.
	Audience string `yaml:"audience"`

	// VaultDir is where passphrase-sealed identity key files live.
	VaultDir string `yaml:"vault_dir"`

	// ChallengeTTL is the lifetime requested for issued challenges.
	// Zero means the authority default; the authority clamps excess.
	ChallengeTTL time.Duration `yaml:"challenge_ttl"`

	// SessionTTL is the lifetime requested when opening sessions.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists, rooted
// at home.
func DefaultConfig(home string) Config {
	return Config{
		DBPath:     filepath.Join(home, "keygate.db"),
		PoolSize:   4,
		Audience:   "keygate",
		VaultDir:   filepath.Join(home, "vault"),
		SessionTTL: 30 * time.Second,
		LogLevel:   "info",
	}
}

// LoadConfig reads the YAML file at path, layering it over the defaults for
// home. A missing file is not an error; the defaults apply.
func LoadConfig(home, path string) (Config, error) {
	cfg := DefaultConfig(home)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, domain.Wrap(domain.CodeValidation, "app.loadConfig", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, domain.Wrap(domain.CodeValidation, "app.loadConfig", err)
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}
	return cfg, nil
}
