package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tgienger/todo/internal/models"
)

// EnvPrefix prefixes environment overrides, e.g. TODO_STORAGE_DRIVER
const EnvPrefix = "TODO"

// Load reads the configuration file at path on top of the defaults.
// An empty path reads DefaultPath if it exists. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the file omits
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis.addr", cfg.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", cfg.Storage.Redis.Password)
	v.SetDefault("storage.redis.db", cfg.Storage.Redis.DB)
	v.SetDefault("storage.redis.prefix", cfg.Storage.Redis.Prefix)
	v.SetDefault("view.filter", cfg.View.Filter)
	v.SetDefault("view.sort", cfg.View.Sort)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
}

// Validate rejects unknown drivers and view settings
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := models.ParseFilter(c.View.Filter); err != nil {
		return fmt.Errorf("view.filter: %w", err)
	}
	if _, err := models.ParseSort(c.View.Sort); err != nil {
		return fmt.Errorf("view.sort: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ViewFilter returns the configured default filter
func (c *Config) ViewFilter() models.Filter {
	f, err := models.ParseFilter(c.View.Filter)
	if err != nil {
		return models.FilterAll
	}
	return f
}

// ViewSort returns the configured default sort
func (c *Config) ViewSort() models.Sort {
	s, err := models.ParseSort(c.View.Sort)
	if err != nil {
		return models.SortCreatedDate
	}
	return s
}

// Dir returns the configuration directory ($XDG_CONFIG_HOME/todo)
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "todo")
}

// DefaultPath returns the path of the default config file
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}
