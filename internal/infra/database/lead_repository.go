package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const leadColumns = `id, name, email, phone, message, budget, source, campaign, lead_source, raw,
	status, zoho_lead_id, lead_score, qualification_level, priority, conversion_value,
	correlation_id, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Create writes the lead and, for healthcare submissions, its metadata row in one transaction.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	raw, err := json.Marshal(lead.Raw)
	if err != nil {
		return eris.Wrap(err, "leads: marshal raw")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "leads: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO leads (
			id, name, email, phone, message, budget, source, campaign, lead_source, raw,
			status, zoho_lead_id, lead_score, qualification_level, priority, conversion_value,
			correlation_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.Budget,
		lead.Source,
		lead.Campaign,
		lead.LeadSource,
		raw,
		lead.Status,
		lead.ZohoLeadID,
		lead.LeadScore,
		lead.QualificationLevel,
		lead.Priority,
		lead.ConversionValue,
		lead.CorrelationID,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return eris.Wrapf(entity.ErrDuplicateLead, "leads: id %s", lead.ID)
	}
	if err != nil {
		return eris.Wrap(err, "leads: insert")
	}

	if h := lead.Healthcare; h != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO healthcare_leads (
				lead_id, healthcare_type, organization, budget, timeline, compliance_needs,
				requirements, is_urgent, budget_approved, lead_score, qualification_level, priority, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			lead.ID,
			h.HealthcareType,
			h.Organization,
			h.Budget,
			h.Timeline,
			pq.Array(nonNil(h.ComplianceNeeds)),
			h.Requirements,
			h.IsUrgent,
			h.BudgetApproved,
			h.LeadScore,
			h.QualificationLevel,
			h.Priority,
			h.CreatedAt,
		)
		if err != nil {
			return eris.Wrap(err, "leads: insert healthcare metadata")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "leads: commit")
	}
	return nil
}

func (r *LeadRepository) MarkPushed(ctx context.Context, id, zohoLeadID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $2, zoho_lead_id = $3, updated_at = NOW() WHERE id = $1`,
		id, entity.LeadStatusPushed, zohoLeadID,
	)
	return expectRow(res, err, entity.ErrLeadNotFound, "leads: mark pushed")
}

func (r *LeadRepository) MarkFailed(ctx context.Context, id string) error {
	// a lead already pushed by a concurrent retry keeps its status
	_, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1 AND status <> 'pushed'`,
		id, entity.LeadStatusFailed,
	)
	if err != nil {
		return eris.Wrap(err, "leads: mark failed")
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "leads: find")
	}

	if lead.Source == entity.SourceHealthcare {
		meta, err := r.findHealthcare(ctx, id)
		if err != nil {
			return nil, err
		}
		lead.Healthcare = meta
	}
	return lead, nil
}

func (r *LeadRepository) findHealthcare(ctx context.Context, leadID string) (*entity.HealthcareMetadata, error) {
	var h entity.HealthcareMetadata
	err := r.DB.QueryRowContext(ctx, `
		SELECT lead_id, healthcare_type, organization, budget, timeline, compliance_needs,
			requirements, is_urgent, budget_approved, lead_score, qualification_level, priority, created_at
		FROM healthcare_leads WHERE lead_id = $1`, leadID,
	).Scan(
		&h.LeadID,
		&h.HealthcareType,
		&h.Organization,
		&h.Budget,
		&h.Timeline,
		pq.Array(&h.ComplianceNeeds),
		&h.Requirements,
		&h.IsUrgent,
		&h.BudgetApproved,
		&h.LeadScore,
		&h.QualificationLevel,
		&h.Priority,
		&h.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "leads: find healthcare metadata")
	}
	return &h, nil
}

func (r *LeadRepository) List(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("status", f.Status)
	add("source", f.Source)
	add("qualification_level", f.Qualification)

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list")
	}
	defer rows.Close()

	leads := make([]*entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "leads: scan")
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "leads: rows")
	}
	return leads, nil
}

// Update applies the non-nil fields of upd.
func (r *LeadRepository) Update(ctx context.Context, id string, upd entity.LeadUpdate) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads SET
			status = COALESCE($2, status),
			priority = COALESCE($3, priority),
			qualification_level = COALESCE($4, qualification_level),
			updated_at = NOW()
		WHERE id = $1`,
		id, upd.Status, upd.Priority, upd.QualificationLevel,
	)
	return expectRow(res, err, entity.ErrLeadNotFound, "leads: update")
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead   entity.Lead
		raw    []byte
		zohoID sql.NullString
	)
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Message,
		&lead.Budget,
		&lead.Source,
		&lead.Campaign,
		&lead.LeadSource,
		&raw,
		&lead.Status,
		&zohoID,
		&lead.LeadScore,
		&lead.QualificationLevel,
		&lead.Priority,
		&lead.ConversionValue,
		&lead.CorrelationID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if zohoID.Valid {
		lead.ZohoLeadID = &zohoID.String
	}
	lead.Raw = map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &lead.Raw); err != nil {
			return nil, eris.Wrap(err, "leads: decode raw")
		}
	}
	return &lead, nil
}

func expectRow(res sql.Result, err error, notFound error, op string) error {
	if err != nil {
		return eris.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, op)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
