package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/matryer/is"
	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/storage"
)

func newService(mem kv.Store) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(storage.NewProfiles(mem, storage.WithLogger(logger)), logger)
}

func TestService_UpdateAndReload(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newService(mem)

	s.Load(ctx)
	_, ok := s.Current()
	is.True(!ok)

	want := models.Profile{Name: "Ada", Email: "ada@example.com"}
	is.NoErr(s.Update(ctx, want))
	got, ok := s.Current()
	is.True(ok)
	is.Equal(got, want)

	other := newService(mem)
	other.Load(ctx)
	got, ok = other.Current()
	is.True(ok)
	is.Equal(got, want)

	is.NoErr(s.Clear(ctx))
	_, ok = s.Current()
	is.True(!ok)
}

func TestService_CorruptProfileIsIgnored(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	s := newService(mem)
	is.NoErr(s.Update(ctx, models.Profile{Name: "Ada"}))

	is.NoErr(mem.Set(ctx, storage.ProfileKey, "not json"))
	s.Load(ctx)
	got, ok := s.Current()
	is.True(ok) // cache kept
	is.Equal(got.Name, "Ada")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
		want    error
	}{
		{"ok", models.Profile{Name: "Ada", Email: "ada@example.com"}, nil},
		{"no email", models.Profile{Name: "Ada"}, nil},
		{"blank name", models.Profile{Name: "  "}, ErrNameRequired},
		{"email without at", models.Profile{Name: "Ada", Email: "ada.example.com"}, ErrInvalidEmail},
		{"malformed email", models.Profile{Name: "Ada", Email: "@"}, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			err := Validate(tt.profile)
			if tt.want == nil {
				is.NoErr(err)
				return
			}
			is.True(errors.Is(err, tt.want))
		})
	}
}
