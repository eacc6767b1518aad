package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/models"
)

type ContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	ListByStatus(ctx context.Context, status models.Status, offset, limit int) ([]*models.ContentItem, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ContentItem, error)
	ListWithEngagement(ctx context.Context) ([]*models.ContentItem, error)
	ListWithExternalID(ctx context.Context) ([]*models.ContentItem, error)
	ListPostedBefore(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error)
	Update(ctx context.Context, item *models.ContentItem, expected models.Status) (bool, error)
	Claim(ctx context.Context, id uuid.UUID, at time.Time, dueBy *time.Time) (*models.ContentItem, error)
	Release(ctx context.Context, id uuid.UUID) error
	UpdateEngagement(ctx context.Context, id uuid.UUID, views, likes, comments int64) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, caption, media_url, media_asset_id, media_type, topic, status, scheduled_at,
	external_id, views, likes, comments, posted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (*models.ContentItem, error) {
	var item models.ContentItem
	err := row.Scan(
		&item.ID,
		&item.Caption,
		&item.MediaURL,
		&item.MediaAssetID,
		&item.MediaType,
		&item.Topic,
		&item.Status,
		&item.ScheduledAt,
		&item.ExternalID,
		&item.Views,
		&item.Likes,
		&item.Comments,
		&item.PostedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error {
	query := `
		INSERT INTO content_items (id, caption, media_url, media_asset_id, media_type, topic, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	args := []any{item.ID, item.Caption, item.MediaURL, item.MediaAssetID, item.MediaType, item.Topic, item.Status, item.ScheduledAt}

	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`

	item, err := scanContentItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return item, nil
}

func (r *contentRepository) ListByStatus(ctx context.Context, status models.Status, offset, limit int) ([]*models.ContentItem, error) {
	order := "created_at DESC"
	if status == models.StatusScheduled {
		order = "scheduled_at ASC"
	}

	query := `SELECT ` + contentColumns + ` FROM content_items WHERE status = $1 ORDER BY ` + order + ` OFFSET $2 LIMIT $3`
	return r.list(ctx, query, status, offset, limit)
}

func (r *contentRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC`
	return r.list(ctx, query, models.StatusScheduled, now.UTC())
}

func (r *contentRepository) ListWithEngagement(ctx context.Context) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE status = $1 AND likes IS NOT NULL AND comments IS NOT NULL
		ORDER BY created_at ASC`
	return r.list(ctx, query, models.StatusPosted)
}

func (r *contentRepository) ListWithExternalID(ctx context.Context) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE external_id IS NOT NULL AND external_id <> ''
		ORDER BY created_at ASC`
	return r.list(ctx, query)
}

func (r *contentRepository) ListPostedBefore(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE status = $1 AND COALESCE(posted_at, created_at) < $2
		ORDER BY created_at ASC`
	return r.list(ctx, query, models.StatusPosted, cutoff.UTC())
}

func (r *contentRepository) list(ctx context.Context, query string, args ...any) ([]*models.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return items, nil
}

// Update writes item back only while the stored row still has the expected
// status. It reports false when another writer moved the row first.
func (r *contentRepository) Update(ctx context.Context, item *models.ContentItem, expected models.Status) (bool, error) {
	query := `
		UPDATE content_items
		SET caption = $1,
			media_url = $2,
			media_asset_id = $3,
			media_type = $4,
			status = $5,
			scheduled_at = $6,
			external_id = $7,
			posted_at = $8,
			updated_at = $9
		WHERE id = $10 AND status = $11
	`
	item.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query,
		item.Caption, item.MediaURL, item.MediaAssetID, item.MediaType, item.Status,
		item.ScheduledAt, item.ExternalID, item.PostedAt, item.UpdatedAt, item.ID, expected)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// Claim marks a scheduled item as posted in one statement, so only one caller
// can win it. A non-nil dueBy also requires scheduled_at <= dueBy. It returns
// nil when the item is missing or no longer claimable.
func (r *contentRepository) Claim(ctx context.Context, id uuid.UUID, at time.Time, dueBy *time.Time) (*models.ContentItem, error) {
	query := `
		UPDATE content_items
		SET status = $1,
			posted_at = $2,
			updated_at = $2
		WHERE id = $3
			AND status = $4
			AND ($5::timestamptz IS NULL OR (scheduled_at IS NOT NULL AND scheduled_at <= $5))
		RETURNING ` + contentColumns

	var due any
	if dueBy != nil {
		due = dueBy.UTC()
	}

	item, err := scanContentItem(r.db.QueryRowContext(ctx, query,
		models.StatusPosted, at.UTC(), id, models.StatusScheduled, due))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return item, nil
}

// Release hands a claimed item back to the schedule after a failed attempt.
func (r *contentRepository) Release(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE content_items
		SET status = $1,
			posted_at = NULL,
			updated_at = $2
		WHERE id = $3 AND status = $4 AND external_id IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, models.StatusScheduled, time.Now().UTC(), id, models.StatusPosted)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) UpdateEngagement(ctx context.Context, id uuid.UUID, views, likes, comments int64) error {
	query := `
		UPDATE content_items
		SET views = $1,
			likes = $2,
			comments = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, views, likes, comments, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM content_items WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
