package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		is := is.New(t)
		s, err := OpenStore(ctx, config.StorageConfig{Driver: config.DriverMemory})
		is.NoErr(err)
		_, ok := s.(*kv.Memory)
		is.True(ok)
	})

	t.Run("sqlite", func(t *testing.T) {
		is := is.New(t)
		s, err := OpenStore(ctx, config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "todo.db")})
		is.NoErr(err)
		defer s.Close()
		_, ok := s.(*db.DB)
		is.True(ok)
	})

	t.Run("unknown", func(t *testing.T) {
		is := is.New(t)
		_, err := OpenStore(ctx, config.StorageConfig{Driver: "etcd"})
		is.True(err != nil)
	})
}

func TestOpen_AppliesViewConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = config.DriverMemory
	cfg.View.Filter = "Pending"
	cfg.View.Sort = "Due Date"

	s, err := Open(context.Background(), cfg, quietLogger())
	is.NoErr(err)
	defer s.Close()
	is.Equal(s.Tasks.Params().Filter, models.FilterPending)
	is.Equal(s.Tasks.Params().Sort, models.SortDueDate)
}

func TestSession_PersistsAcrossReopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "todo.db")

	s, err := Open(ctx, cfg, quietLogger())
	is.NoErr(err)
	_, err = s.Tasks.Add(ctx, models.TaskInput{Title: "Buy milk", Category: models.CategoryPersonal, Priority: models.PriorityLow})
	is.NoErr(err)
	is.NoErr(s.Profile.Update(ctx, models.Profile{Name: "Ada"}))
	is.NoErr(s.Close())

	s, err = Open(ctx, cfg, quietLogger())
	is.NoErr(err)
	defer s.Close()
	is.Equal(len(s.Tasks.Tasks()), 1)
	p, ok := s.Profile.Current()
	is.True(ok)
	is.Equal(p.Name, "Ada")
}

func TestSession_Reset(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s, err := NewSession(ctx, kv.NewMemory(), quietLogger())
	is.NoErr(err)

	_, err = s.Tasks.Add(ctx, models.TaskInput{Title: "x", Category: models.CategoryWork, Priority: models.PriorityHigh})
	is.NoErr(err)
	is.NoErr(s.Profile.Update(ctx, models.Profile{Name: "Ada"}))
	is.NoErr(s.Preferences.SetTheme(ctx, models.ThemeDark))
	is.NoErr(s.Preferences.CompleteOnboarding(ctx))

	is.NoErr(s.Reset(ctx))
	is.Equal(len(s.Tasks.Tasks()), 0)
	_, ok := s.Profile.Current()
	is.True(!ok)
	is.Equal(s.Preferences.Theme(ctx), models.ThemeSystem)
	is.True(!s.Preferences.OnboardingCompleted(ctx))
}
