package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

// Preferences is the per-moderator dashboard state that used to live in the
// browser's local storage: the saved filter record, the theme, and whether the
// hotkey onboarding hint has been dismissed. All of it is best-effort
// convenience; a corrupt or missing record silently falls back to defaults.
type Preferences struct {
	Filters        *filter.State `json:"filters,omitempty"`
	Theme          Theme         `json:"theme"`
	OnboardingSeen bool          `json:"onboardingSeen"`
}

type PreferencesUsecase struct {
	store  cache.CacheRepository
	logger *zap.Logger
}

func NewPreferencesUsecase(store cache.CacheRepository, logger *zap.Logger) *PreferencesUsecase {
	return &PreferencesUsecase{store: store, logger: logger}
}

func prefsKey(moderatorID, field string) string {
	return fmt.Sprintf("prefs:%s:%s", moderatorID, field)
}

// Get assembles the moderator's preferences. Missing or unparsable pieces are
// treated as absent.
func (uc *PreferencesUsecase) Get(ctx context.Context, moderatorID string) Preferences {
	prefs := Preferences{Theme: ThemeLight}

	if data, err := uc.store.Get(ctx, prefsKey(moderatorID, filter.SavedFiltersKey)); err == nil {
		if st, err := filter.DecodeSaved(data); err == nil {
			prefs.Filters = &st
		}
	}
	if data, err := uc.store.Get(ctx, prefsKey(moderatorID, "theme")); err == nil {
		if t := Theme(data); t == ThemeLight || t == ThemeDark {
			prefs.Theme = t
		}
	}
	if data, err := uc.store.Get(ctx, prefsKey(moderatorID, "onboarding")); err == nil {
		prefs.OnboardingSeen = string(data) == "true"
	}
	return prefs
}

// SavedFilters returns the raw saved filter record, or nil when absent. The
// caller feeds it into filter.Resolve, which handles corrupt records itself.
func (uc *PreferencesUsecase) SavedFilters(ctx context.Context, moderatorID string) []byte {
	data, err := uc.store.Get(ctx, prefsKey(moderatorID, filter.SavedFiltersKey))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Failed to read saved filters", zap.String("moderator_id", moderatorID), zap.Error(err))
		}
		return nil
	}
	return data
}

// SaveFilters mirrors the effective filter state into the persisted record.
func (uc *PreferencesUsecase) SaveFilters(ctx context.Context, moderatorID string, s filter.State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := filter.EncodeSaved(s)
	if err != nil {
		return fmt.Errorf("PreferencesUsecase.SaveFilters: %w", err)
	}
	if err := uc.store.Set(ctx, prefsKey(moderatorID, filter.SavedFiltersKey), data, 0); err != nil {
		return fmt.Errorf("PreferencesUsecase.SaveFilters: %w", err)
	}
	return nil
}

func (uc *PreferencesUsecase) SetTheme(ctx context.Context, moderatorID string, theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		return ErrInvalidTheme
	}
	if err := uc.store.Set(ctx, prefsKey(moderatorID, "theme"), []byte(theme), 0); err != nil {
		return fmt.Errorf("PreferencesUsecase.SetTheme: %w", err)
	}
	return nil
}

func (uc *PreferencesUsecase) SetOnboardingSeen(ctx context.Context, moderatorID string, seen bool) error {
	value := []byte("false")
	if seen {
		value = []byte("true")
	}
	if err := uc.store.Set(ctx, prefsKey(moderatorID, "onboarding"), value, 0); err != nil {
		return fmt.Errorf("PreferencesUsecase.SetOnboardingSeen: %w", err)
	}
	return nil
}
