package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const retryColumns = `id, type, payload, attempts, status, next_run_at, last_error, created_at, updated_at`

type IntegrationRepository struct {
	DB *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{DB: db}
}

func (r *IntegrationRepository) EnqueueRetry(ctx context.Context, retry *entity.IntegrationRetry) error {
	payload, err := json.Marshal(retry.Payload)
	if err != nil {
		return eris.Wrap(err, "retries: marshal payload")
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO integration_retries (`+retryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		retry.ID,
		retry.Type,
		payload,
		retry.Attempts,
		retry.Status,
		retry.NextRunAt,
		retry.LastError,
		retry.CreatedAt,
		retry.UpdatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "retries: insert")
	}
	return nil
}

func (r *IntegrationRepository) AppendLog(ctx context.Context, l *entity.IntegrationLog) error {
	var payload any
	if l.Payload != nil {
		b, err := json.Marshal(l.Payload)
		if err != nil {
			return eris.Wrap(err, "integration log: marshal payload")
		}
		payload = b
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO integration_logs (id, level, integration, event, message, correlation_id, lead_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID,
		l.Level,
		l.Integration,
		l.Event,
		l.Message,
		l.CorrelationID,
		nullString(l.LeadID),
		payload,
		l.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "integration log: insert")
	}
	return nil
}

// ClaimDueRetries moves up to limit due rows to processing and returns them.
// SKIP LOCKED keeps two workers from claiming the same row.
func (r *IntegrationRepository) ClaimDueRetries(ctx context.Context, now time.Time, limit int) ([]*entity.IntegrationRetry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE integration_retries SET status = 'processing', updated_at = $1
		WHERE id IN (
			SELECT id FROM integration_retries
			WHERE status = 'queued' AND next_run_at <= $1
			ORDER BY next_run_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+retryColumns,
		now, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "retries: claim")
	}
	defer rows.Close()
	return scanRetries(rows)
}

func (r *IntegrationRepository) UpdateRetry(ctx context.Context, retry *entity.IntegrationRetry) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE integration_retries
		SET attempts = $2, status = $3, next_run_at = $4, last_error = $5, updated_at = $6
		WHERE id = $1`,
		retry.ID,
		retry.Attempts,
		retry.Status,
		retry.NextRunAt,
		retry.LastError,
		retry.UpdatedAt,
	)
	return expectRow(res, err, entity.ErrRetryNotFound, "retries: update")
}

func (r *IntegrationRepository) ListRetries(ctx context.Context, status string, limit int) ([]*entity.IntegrationRetry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+retryColumns+` FROM integration_retries ORDER BY next_run_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+retryColumns+` FROM integration_retries WHERE status = $1 ORDER BY next_run_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, eris.Wrap(err, "retries: list")
	}
	defer rows.Close()
	return scanRetries(rows)
}

// Requeue makes a retry due immediately, whatever state it was left in.
func (r *IntegrationRepository) Requeue(ctx context.Context, id string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE integration_retries SET status = 'queued', next_run_at = $2, updated_at = $2 WHERE id = $1`,
		id, now,
	)
	return expectRow(res, err, entity.ErrRetryNotFound, "retries: requeue")
}

func scanRetries(rows *sql.Rows) ([]*entity.IntegrationRetry, error) {
	out := make([]*entity.IntegrationRetry, 0)
	for rows.Next() {
		var (
			retry   entity.IntegrationRetry
			payload []byte
		)
		err := rows.Scan(
			&retry.ID,
			&retry.Type,
			&payload,
			&retry.Attempts,
			&retry.Status,
			&retry.NextRunAt,
			&retry.LastError,
			&retry.CreatedAt,
			&retry.UpdatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "retries: scan")
		}
		if err := json.Unmarshal(payload, &retry.Payload); err != nil {
			return nil, eris.Wrap(err, "retries: decode payload")
		}
		out = append(out, &retry)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "retries: rows")
	}
	return out, nil
}
