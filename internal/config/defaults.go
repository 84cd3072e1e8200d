package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "todo:",
			},
		},
		View: ViewConfig{
			Filter: "All",
			Sort:   "Created Date",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

const defaultContent = `# todo configuration
version: "1"

storage:
  # sqlite, redis or memory
  driver: sqlite
  # sqlite database file (default: $XDG_DATA_HOME/todo/todo.db)
  # path: ~/.local/share/todo/todo.db
  redis:
    addr: localhost:6379
    password: ""
    db: 0
    prefix: "todo:"

# Initial task list view
view:
  # All, Pending, Completed or Overdue
  filter: All
  # Created Date, Priority or Due Date
  sort: Created Date

log:
  # debug, info, warn or error
  level: warn
  # text or json
  format: text
  # file: ~/.local/share/todo/todo.log
`

// WriteDefault writes the default configuration to path
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultContent), 0644)
}
