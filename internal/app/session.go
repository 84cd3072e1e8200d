// Package app wires storage, the task store and the profile service into one
// session shared by the CLI and the terminal UI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/profile"
	"github.com/tgienger/todo/internal/query"
	"github.com/tgienger/todo/internal/storage"
	"github.com/tgienger/todo/internal/tasks"
)

// Session owns the open storage backend and the caches built on it
type Session struct {
	KV          kv.Store
	Tasks       *tasks.Store
	Profile     *profile.Service
	Preferences *storage.Preferences

	logger *slog.Logger
}

// OpenStore opens the key-value backend selected by cfg
func OpenStore(ctx context.Context, cfg config.StorageConfig) (kv.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		d, err := db.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DriverRedis:
		r, err := kv.DialRedis(ctx, kv.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.DriverMemory:
		return kv.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Open opens the configured backend and loads tasks and profile into memory
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	params := query.DefaultParams()
	params.Filter = cfg.ViewFilter()
	params.Sort = cfg.ViewSort()
	return NewSession(ctx, store, logger, tasks.WithParams(params))
}

// NewSession builds a session on an already open backend
func NewSession(ctx context.Context, store kv.Store, logger *slog.Logger, opts ...tasks.Option) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	withLogger := storage.WithLogger(logger)
	opts = append([]tasks.Option{tasks.WithLogger(logger)}, opts...)

	s := &Session{
		KV:          store,
		Tasks:       tasks.New(storage.NewTasks(store, withLogger), opts...),
		Profile:     profile.NewService(storage.NewProfiles(store, withLogger), logger),
		Preferences: storage.NewPreferences(store, withLogger),
		logger:      logger,
	}
	if err := s.Reload(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// Reload refreshes the task and profile caches from storage
func (s *Session) Reload(ctx context.Context) error {
	if err := s.Tasks.Load(ctx); err != nil {
		return err
	}
	s.Profile.Load(ctx)
	return nil
}

// Reset clears tasks, profile, theme and onboarding, leaving the app as on a
// fresh install, then reloads the caches.
func (s *Session) Reset(ctx context.Context) error {
	err := errors.Join(
		s.Tasks.ClearAll(ctx),
		s.Profile.Clear(ctx),
		s.Preferences.Reset(ctx),
	)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Info("All local data cleared")
	return s.Reload(ctx)
}

// Logger returns the session's logger
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Close releases the storage backend
func (s *Session) Close() error {
	return s.KV.Close()
}
