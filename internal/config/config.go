package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// coros backend access
	Region      string `toml:"region"`   // global, eu or cn
	BaseURL     string `toml:"base_url"` // overrides the region mapping when set
	AccessToken string `toml:"access_token"`
	UserID      string `toml:"user_id"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// sentry
	SentryEnabled bool   `toml:"sentry_enabled"`
	SentryDSN     string `toml:"sentry_dsn"`
	// cache
	CacheSizeMegabytes int `toml:"cache_size_megabytes"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file and returns the section for env.
func Load(env, path string) (*Config, error) {
	var cfgToml Toml
	if _, err := toml.DecodeFile(path, &cfgToml); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := cfgToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s is empty", env)
	}

	if cfg.CacheSizeMegabytes <= 0 {
		cfg.CacheSizeMegabytes = 10
	}
	return cfg, nil
}
