// Package storage persists tasks, the profile and app preferences as whole
// JSON blobs in a kv.Store.
//
// Every task mutation loads the full collection, changes it in memory and
// writes it back. Reads degrade to "no data" on failure; writes report errors.
package storage

import (
	"errors"
	"log/slog"
)

// Keys under which each blob is stored
const (
	TasksKey      = "@todo_app:tasks"
	ProfileKey    = "@todo_app:profile"
	ThemeKey      = "@todo_app:theme_mode"
	OnboardingKey = "@todo_app:onboarding_completed_v1"
)

// ErrCorrupt is returned when a stored blob cannot be decoded
var ErrCorrupt = errors.New("stored data is corrupt")

// Option configures a storage type
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report swallowed read failures
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
