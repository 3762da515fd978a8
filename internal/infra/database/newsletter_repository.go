package database

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/xavierca1/agency-leads/internal/entity"
)

type NewsletterRepository struct {
	DB *sql.DB
}

func NewNewsletterRepository(db *sql.DB) *NewsletterRepository {
	return &NewsletterRepository{DB: db}
}

// Upsert inserts by email or re-subscribes an existing address, keeping known fields.
func (r *NewsletterRepository) Upsert(ctx context.Context, s *entity.NewsletterSubscriber) error {
	query := `
		INSERT INTO newsletter_subscribers (id, email, name, phone, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, newsletter_subscribers.name),
			phone = COALESCE(EXCLUDED.phone, newsletter_subscribers.phone),
			source = COALESCE(EXCLUDED.source, newsletter_subscribers.source),
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		s.ID,
		s.Email,
		nullString(s.Name),
		nullString(s.Phone),
		nullString(s.Source),
		s.Status,
	).Scan(
		&s.ID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "newsletter: upsert")
	}
	return nil
}

func (r *NewsletterRepository) List(ctx context.Context, limit, offset int) ([]*entity.NewsletterSubscriber, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, email, COALESCE(name, ''), COALESCE(phone, ''), COALESCE(source, ''), status, created_at, updated_at
		FROM newsletter_subscribers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "newsletter: list")
	}
	defer rows.Close()

	out := make([]*entity.NewsletterSubscriber, 0)
	for rows.Next() {
		var s entity.NewsletterSubscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Phone, &s.Source, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "newsletter: scan")
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "newsletter: rows")
	}
	return out, nil
}
