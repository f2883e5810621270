package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rpggio/project365/internal/domain/calendar"
	"github.com/rpggio/project365/internal/domain/settings"
)

const (
	keyUserName           = "user_name"
	keyOnboardingComplete = "onboarding_complete"
	keySelectedProject    = "selected_project_id"
	keyStreakDays         = "streak_days"
	keyLastActiveDate     = "last_active_date"
)

// SettingsRepository implements settings.Repository over the key/value settings table
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get assembles the settings document; missing keys keep their zero value
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var s settings.Settings
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		switch key {
		case keyUserName:
			s.UserName = value
		case keyOnboardingComplete:
			s.OnboardingComplete, err = strconv.ParseBool(value)
		case keySelectedProject:
			s.SelectedProjectID = value
		case keyStreakDays:
			s.StreakDays, err = strconv.Atoi(value)
		case keyLastActiveDate:
			s.LastActiveDate = calendar.Date(value)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode setting %q: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings rows: %w", err)
	}
	return &s, nil
}

// Save upserts every settings key in one transaction
func (r *SettingsRepository) Save(ctx context.Context, s *settings.Settings) error {
	values := map[string]string{
		keyUserName:           s.UserName,
		keyOnboardingComplete: strconv.FormatBool(s.OnboardingComplete),
		keySelectedProject:    s.SelectedProjectID,
		keyStreakDays:         strconv.Itoa(s.StreakDays),
		keyLastActiveDate:     string(s.LastActiveDate),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := upsertSettings(ctx, tx, values); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

func upsertSettings(ctx context.Context, tx *sql.Tx, values map[string]string) error {
	for key, value := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("failed to set %q: %w", key, err)
		}
	}
	return nil
}
