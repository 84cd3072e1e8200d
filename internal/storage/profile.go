package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
)

// Profiles stores the single profile record under ProfileKey
type Profiles struct {
	kv     kv.Store
	logger *slog.Logger
}

// NewProfiles creates a profile blob store on top of s
func NewProfiles(s kv.Store, opts ...Option) *Profiles {
	o := newOptions(opts)
	return &Profiles{kv: s, logger: o.logger}
}

// Load returns the stored profile, or nil if none has been saved
func (s *Profiles) Load(ctx context.Context) (*models.Profile, error) {
	data, err := s.kv.Get(ctx, ProfileKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("load profile: %w: %v", ErrCorrupt, err)
	}
	return &p, nil
}

// LoadOrNil reads the profile, treating any failure as absent
func (s *Profiles) LoadOrNil(ctx context.Context) *models.Profile {
	p, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load profile", "error", err)
		return nil
	}
	return p
}

// Save replaces the stored profile
func (s *Profiles) Save(ctx context.Context, p models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, ProfileKey, string(data)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Clear removes the stored profile
func (s *Profiles) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, ProfileKey); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
