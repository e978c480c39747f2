package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/filter"
)

func TestPreferences_Defaults(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())

	prefs := uc.Get(context.Background(), "mod-1")
	assert.Nil(t, prefs.Filters)
	assert.Equal(t, ThemeLight, prefs.Theme)
	assert.False(t, prefs.OnboardingSeen)
}

func TestPreferences_SaveAndReadFilters(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())
	ctx := context.Background()

	s := filter.Defaults()
	s.Search = "самокат"
	require.NoError(t, uc.SaveFilters(ctx, "mod-1", s))

	prefs := uc.Get(ctx, "mod-1")
	require.NotNil(t, prefs.Filters)
	assert.Equal(t, "самокат", prefs.Filters.Search)

	raw := uc.SavedFilters(ctx, "mod-1")
	require.NotNil(t, raw)
	decoded, err := filter.DecodeSaved(raw)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestPreferences_SaveFiltersRejectsEmptyStatuses(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())

	s := filter.Defaults()
	s.Statuses = nil
	err := uc.SaveFilters(context.Background(), "mod-1", s)
	assert.ErrorIs(t, err, filter.ErrLastStatus)
}

func TestPreferences_FiltersAreScopedPerModerator(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())
	ctx := context.Background()

	s := filter.Defaults()
	s.Search = "кресло"
	require.NoError(t, uc.SaveFilters(ctx, "mod-1", s))

	assert.Nil(t, uc.SavedFilters(ctx, "mod-2"))
}

func TestPreferences_CorruptFilterRecordIgnored(t *testing.T) {
	store := newFakeCache()
	uc := NewPreferencesUsecase(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, prefsKey("mod-1", filter.SavedFiltersKey), []byte("{oops"), 0))

	prefs := uc.Get(ctx, "mod-1")
	assert.Nil(t, prefs.Filters)
}

func TestPreferences_Theme(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, uc.SetTheme(ctx, "mod-1", ThemeDark))
	assert.Equal(t, ThemeDark, uc.Get(ctx, "mod-1").Theme)

	err := uc.SetTheme(ctx, "mod-1", Theme("sepia"))
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, ThemeDark, uc.Get(ctx, "mod-1").Theme)
}

func TestPreferences_OnboardingSeen(t *testing.T) {
	uc := NewPreferencesUsecase(newFakeCache(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, uc.SetOnboardingSeen(ctx, "mod-1", true))
	assert.True(t, uc.Get(ctx, "mod-1").OnboardingSeen)

	require.NoError(t, uc.SetOnboardingSeen(ctx, "mod-1", false))
	assert.False(t, uc.Get(ctx, "mod-1").OnboardingSeen)
}
