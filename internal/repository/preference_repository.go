package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentdesk/internal/models"
)

type PreferenceRepository interface {
	GetByWeekday(ctx context.Context, weekday string) (*models.DayPreference, bool, error)
	List(ctx context.Context) ([]*models.DayPreference, error)
	Upsert(ctx context.Context, p *models.DayPreference) error
	InsertMissing(ctx context.Context, p *models.DayPreference) error
}

type preferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetByWeekday(ctx context.Context, weekday string) (*models.DayPreference, bool, error) {
	query := `SELECT weekday, hour, updated_at FROM day_preferences WHERE weekday = $1`
	row := r.db.QueryRowContext(ctx, query, weekday)

	var p models.DayPreference
	err := row.Scan(&p.Weekday, &p.Hour, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &p, true, nil
}

func (r *preferenceRepository) List(ctx context.Context) ([]*models.DayPreference, error) {
	query := `SELECT weekday, hour, updated_at FROM day_preferences`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var prefs []*models.DayPreference
	for rows.Next() {
		var p models.DayPreference
		if err := rows.Scan(&p.Weekday, &p.Hour, &p.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		prefs = append(prefs, &p)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return prefs, nil
}

// Upsert overwrites the hour stored for p.Weekday.
func (r *preferenceRepository) Upsert(ctx context.Context, p *models.DayPreference) error {
	query := `
		INSERT INTO day_preferences (weekday, hour, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (weekday) DO UPDATE
		SET hour = EXCLUDED.hour,
			updated_at = EXCLUDED.updated_at
	`
	p.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, p.Weekday, p.Hour, p.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// InsertMissing stores p only when no record exists for its weekday.
func (r *preferenceRepository) InsertMissing(ctx context.Context, p *models.DayPreference) error {
	query := `
		INSERT INTO day_preferences (weekday, hour, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (weekday) DO NOTHING
	`
	p.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, p.Weekday, p.Hour, p.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
