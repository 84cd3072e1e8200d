// Package profile caches the user's profile for the session.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"github.com/tgienger/todo/internal/models"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidEmail = errors.New("email must contain @")
)

// Persister stores the single profile record
type Persister interface {
	Load(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p models.Profile) error
	Clear(ctx context.Context) error
}

// Service is the write-through cache of the profile
type Service struct {
	persist Persister
	logger  *slog.Logger

	mu      sync.RWMutex
	current *models.Profile
}

// NewService creates a service with nothing cached
func NewService(persist Persister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{persist: persist, logger: logger}
}

// Load refreshes the cache from storage. Failures are logged and leave the cache as is.
func (s *Service) Load(ctx context.Context) {
	p, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load profile", "error", err)
		return
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}

// Current returns the cached profile
func (s *Service) Current() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Profile{}, false
	}
	return *s.current, true
}

// Update replaces the profile in storage and then in the cache
func (s *Service) Update(ctx context.Context, p models.Profile) error {
	if err := s.persist.Save(ctx, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
	return nil
}

// Clear removes the profile from storage and the cache
func (s *Service) Clear(ctx context.Context) error {
	if err := s.persist.Clear(ctx); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}

// Validate checks a profile the way the profile form does: a name, and an
// email that contains "@". Phone is free text.
func Validate(p models.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Email != "" {
		if !strings.Contains(p.Email, "@") {
			return ErrInvalidEmail
		}
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
		}
	}
	return nil
}
