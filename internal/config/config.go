package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIURL                string `toml:"api_url" env:"SITECREW_API_URL"`
	PageSize              int    `toml:"page_size" env:"SITECREW_PAGE_SIZE"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds" env:"SITECREW_REQUEST_TIMEOUT_SECONDS"`
	RetryMax              int    `toml:"retry_max" env:"SITECREW_RETRY_MAX"`
	LogLevel              string `toml:"log_level" env:"SITECREW_LOG_LEVEL"`
	ExportsDir            string `toml:"exports_dir" env:"SITECREW_EXPORTS_DIR"`
}

func DefaultConfig() *Config {
	homeDir, _ := HomeDir()
	return &Config{
		APIURL:     "http://localhost:5000/api",
		PageSize:   10,
		LogLevel:   "info",
		ExportsDir: filepath.Join(homeDir, "Documents", "sitecrew"),
	}
}

// HomeDir can be overridden in tests.
var HomeDir = os.UserHomeDir

func SitecrewDir() (string, error) {
	homeDir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".sitecrew"), nil
}

func ConfigPath() (string, error) {
	dir, err := SitecrewDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := SitecrewDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "sitecrew.sqlite"), nil
}

func LogPath() (string, error) {
	dir, err := SitecrewDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sitecrew.log"), nil
}

func EnsureDirectories() error {
	dir, err := SitecrewDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(filepath.Join(dir, "db"), 0755)
}

// Load reads config.toml (creating it with defaults on first run), then
// applies an optional .env file and SITECREW_* environment overrides.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Unset variables leave the file values in place
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.PageSize < 1 {
		c.PageSize = DefaultConfig().PageSize
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.ExportsDir = expandPath(c.ExportsDir)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := HomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
