package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
)

// Preferences stores the theme mode and the onboarding flag
type Preferences struct {
	kv     kv.Store
	logger *slog.Logger
}

// NewPreferences creates a preference store on top of s
func NewPreferences(s kv.Store, opts ...Option) *Preferences {
	o := newOptions(opts)
	return &Preferences{kv: s, logger: o.logger}
}

// Theme returns the saved theme mode. Unset or unreadable values give ThemeSystem.
func (p *Preferences) Theme(ctx context.Context) models.ThemeMode {
	v, err := p.kv.Get(ctx, ThemeKey)
	if err != nil {
		return models.ThemeSystem
	}
	mode, err := models.ParseThemeMode(v)
	if err != nil {
		p.logger.Warn("Ignoring stored theme", "value", v, "error", err)
		return models.ThemeSystem
	}
	return mode
}

// SetTheme saves the theme mode
func (p *Preferences) SetTheme(ctx context.Context, mode models.ThemeMode) error {
	if _, err := models.ParseThemeMode(string(mode)); err != nil {
		return err
	}
	if err := p.kv.Set(ctx, ThemeKey, string(mode)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// OnboardingCompleted reports whether the first-run flow has finished
func (p *Preferences) OnboardingCompleted(ctx context.Context) bool {
	v, err := p.kv.Get(ctx, OnboardingKey)
	return err == nil && v == "true"
}

// CompleteOnboarding records that the first-run flow has finished
func (p *Preferences) CompleteOnboarding(ctx context.Context) error {
	if err := p.kv.Set(ctx, OnboardingKey, "true"); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

// Reset forgets the theme and the onboarding flag
func (p *Preferences) Reset(ctx context.Context) error {
	for _, key := range []string{ThemeKey, OnboardingKey} {
		if err := p.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	return nil
}
