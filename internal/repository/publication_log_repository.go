package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/models"
)

type PublicationLogRepository interface {
	Create(ctx context.Context, pl *models.PublicationLog) (int64, error)
	ListByContentID(ctx context.Context, contentID uuid.UUID) ([]*models.PublicationLog, error)
}

type publicationLogRepository struct {
	db *sql.DB
}

func NewPublicationLogRepository(db *sql.DB) PublicationLogRepository {
	return &publicationLogRepository{db: db}
}

func (r *publicationLogRepository) Create(ctx context.Context, pl *models.PublicationLog) (int64, error) {
	query := `
		INSERT INTO publication_log (content_id, channel, error_message)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, pl.ContentID, pl.Channel, pl.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publicationLogRepository) ListByContentID(ctx context.Context, contentID uuid.UUID) ([]*models.PublicationLog, error) {
	query := `
		SELECT id, content_id, channel, error_message, created_at
		FROM publication_log
		WHERE content_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contentID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var logs []*models.PublicationLog
	for rows.Next() {
		var pl models.PublicationLog
		err := rows.Scan(&pl.ID, &pl.ContentID, &pl.Channel, &pl.ErrorMessage, &pl.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		logs = append(logs, &pl)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return logs, nil
}
