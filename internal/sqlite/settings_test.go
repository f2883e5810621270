package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/project365/internal/domain/settings"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_EmptyIsZero(t *testing.T) {
	repo := NewSettingsRepository(NewTestDB(t))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, &settings.Settings{}, got)
}

func TestSettingsRepository_SaveGet(t *testing.T) {
	repo := NewSettingsRepository(NewTestDB(t))
	ctx := context.Background()

	want := &settings.Settings{
		UserName:           "Robin",
		OnboardingComplete: true,
		SelectedProjectID:  "p1",
		StreakDays:         6,
		LastActiveDate:     "2024-03-01",
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	want.SelectedProjectID = ""
	want.StreakDays = 1
	require.NoError(t, repo.Save(ctx, want))
	got, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
