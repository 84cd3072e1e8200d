package config

// Config represents the full application configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Where tasks, the profile and preferences are stored
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Initial list view
	View ViewConfig `yaml:"view" mapstructure:"view"`

	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	// sqlite, redis or memory
	Driver string `yaml:"driver" mapstructure:"driver"`
	// sqlite database file; empty means the data directory default
	Path  string      `yaml:"path" mapstructure:"path"`
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// ViewConfig holds the default filter and sort of the task list
type ViewConfig struct {
	Filter string `yaml:"filter" mapstructure:"filter"`
	Sort   string `yaml:"sort" mapstructure:"sort"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// debug, info, warn or error
	Level string `yaml:"level" mapstructure:"level"`
	// text or json
	Format string `yaml:"format" mapstructure:"format"`
	// log file; empty means stderr
	File string `yaml:"file" mapstructure:"file"`
}

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)
