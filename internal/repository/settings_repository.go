package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"Mansoor88-6/timeclock/internal/models"
)

const clockContextKey = "clock_context"

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for key and false when it is not set.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// ClockContext returns the selected job and task, or a zero value if none
// has been chosen yet.
func (r *SettingsRepository) ClockContext(ctx context.Context) (models.ClockContext, error) {
	raw, ok, err := r.Get(ctx, clockContextKey)
	if err != nil || !ok {
		return models.ClockContext{}, err
	}
	var cc models.ClockContext
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		return models.ClockContext{}, fmt.Errorf("decode clock context: %w", err)
	}
	return cc, nil
}

func (r *SettingsRepository) SetClockContext(ctx context.Context, cc models.ClockContext) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("encode clock context: %w", err)
	}
	return r.Set(ctx, clockContextKey, string(data))
}
