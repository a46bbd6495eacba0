package claim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const claimCols = `id, claim_number, encounter_id, patient_id, patient_name,
	payer_id, payer_name, member_id, rendering_provider,
	date_of_service, visit_type, state, total_charge, paid_amount,
	codes, status, prior_auth_status, confidence, field_confidence,
	issues, suggested_fixes, validation_results,
	auto_submitted, attempt_count, state_history,
	payer_response, rejection_response, scrub_results,
	created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.ClaimNumber, &c.EncounterID, &c.PatientID, &c.PatientName,
		&c.PayerID, &c.PayerName, &c.MemberID, &c.RenderingProvider,
		&c.DateOfService, &c.VisitType, &c.State, &c.TotalCharge, &c.PaidAmount,
		&c.Codes, &c.Status, &c.PriorAuthStatus, &c.Confidence, &c.FieldConfidence,
		&c.Issues, &c.SuggestedFixes, &c.ValidationResults,
		&c.AutoSubmitted, &c.AttemptCount, &c.StateHistory,
		&c.PayerResponse, &c.RejectionResponse, &c.ScrubResults,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	if c.ClaimNumber == "" {
		c.ClaimNumber = c.ID.String()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO claim (id, claim_number, encounter_id, patient_id, patient_name,
			payer_id, payer_name, member_id, rendering_provider,
			date_of_service, visit_type, state, total_charge, paid_amount,
			codes, status, prior_auth_status, confidence, field_confidence,
			issues, suggested_fixes, validation_results,
			auto_submitted, attempt_count, state_history,
			payer_response, rejection_response, scrub_results)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)`,
		c.ID, c.ClaimNumber, c.EncounterID, c.PatientID, c.PatientName,
		c.PayerID, c.PayerName, c.MemberID, c.RenderingProvider,
		c.DateOfService, c.VisitType, c.State, c.TotalCharge, c.PaidAmount,
		c.Codes, c.Status, c.PriorAuthStatus, c.Confidence, c.FieldConfidence,
		c.Issues, c.SuggestedFixes, c.ValidationResults,
		c.AutoSubmitted, c.AttemptCount, c.StateHistory,
		c.PayerResponse, c.RejectionResponse, c.ScrubResults)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claim WHERE id = $1`, id))
}

func (r *repoPG) GetByClaimNumber(ctx context.Context, number string) (*Claim, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claim WHERE claim_number = $1`, number))
}

func (r *repoPG) Update(ctx context.Context, c *Claim) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE claim SET patient_name=$2, payer_id=$3, payer_name=$4, member_id=$5,
			rendering_provider=$6, date_of_service=$7, visit_type=$8, state=$9,
			total_charge=$10, paid_amount=$11, codes=$12, status=$13,
			prior_auth_status=$14, confidence=$15, field_confidence=$16,
			issues=$17, suggested_fixes=$18, validation_results=$19,
			auto_submitted=$20, attempt_count=$21, state_history=$22,
			payer_response=$23, rejection_response=$24, scrub_results=$25,
			updated_at=$26
		WHERE id = $1`,
		c.ID, c.PatientName, c.PayerID, c.PayerName, c.MemberID,
		c.RenderingProvider, c.DateOfService, c.VisitType, c.State,
		c.TotalCharge, c.PaidAmount, c.Codes, c.Status,
		c.PriorAuthStatus, c.Confidence, c.FieldConfidence,
		c.Issues, c.SuggestedFixes, c.ValidationResults,
		c.AutoSubmitted, c.AttemptCount, c.StateHistory,
		c.PayerResponse, c.RejectionResponse, c.ScrubResults,
		c.UpdatedAt)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM claim WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 0
	addArg := func(clause string, v interface{}) {
		n++
		where += fmt.Sprintf(clause, n)
		args = append(args, v)
	}
	if filter.Status != "" {
		addArg(` AND status = $%d`, filter.Status)
	}
	if filter.PatientID != "" {
		addArg(` AND patient_id = $%d`, filter.PatientID)
	}
	if filter.PayerID != "" {
		addArg(` AND payer_id = $%d`, filter.PayerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claim`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+claimCols+` FROM claim`+where+
			fmt.Sprintf(` ORDER BY date_of_service DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Claim
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Claim, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+claimCols+` FROM claim ORDER BY date_of_service DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Claim
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
