package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/xavierca1/agency-leads/internal/entity"
)

type ConversionTagRepository struct {
	DB *sql.DB
}

func NewConversionTagRepository(db *sql.DB) *ConversionTagRepository {
	return &ConversionTagRepository{DB: db}
}

// FindByEventType returns the active tag for the event type.
func (r *ConversionTagRepository) FindByEventType(ctx context.Context, eventType string) (*entity.ConversionTag, error) {
	var t entity.ConversionTag
	err := r.DB.QueryRowContext(ctx, `
		SELECT event_type, conversion_id, conversion_label, active
		FROM conversion_tags
		WHERE event_type = $1 AND active`, eventType,
	).Scan(&t.EventType, &t.ConversionID, &t.ConversionLabel, &t.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrConversionTagNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "conversion tags: find")
	}
	return &t, nil
}
