package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type postgresAssessmentRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresAssessmentRepo returns a fraud.Repository backed by PostgreSQL.
func NewPostgresAssessmentRepo(conn *postgres.Connection, log logging.Logger) fraud.Repository {
	return &postgresAssessmentRepo{log: log, executor: conn.DB()}
}

func (r *postgresAssessmentRepo) Save(ctx context.Context, rec *fraud.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `
		INSERT INTO fraud_assessments (
			id, tenant_id, user_id, claim_id, amount, description, is_third_party,
			previous_claims_count, risk_level, score, reasons
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		rec.ID, rec.TenantID, rec.UserID, rec.Input.ClaimID, rec.Input.Amount, rec.Input.Description,
		rec.Input.IsThirdParty, rec.Input.PreviousClaimsCount, string(rec.RiskLevel), rec.Score,
		string(marshalStrings(rec.Reasons)),
	).Scan(&rec.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save fraud assessment")
	}
	return nil
}

func (r *postgresAssessmentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*fraud.Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT id, tenant_id, user_id, claim_id, amount, description, is_third_party,
			previous_claims_count, risk_level, score, reasons, created_at
		FROM fraud_assessments
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.executor.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list fraud assessments")
	}
	defer rows.Close()

	out := []*fraud.Record{}
	for rows.Next() {
		var rec fraud.Record
		var level string
		var reasons []byte
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.UserID, &rec.Input.ClaimID, &rec.Input.Amount, &rec.Input.Description,
			&rec.Input.IsThirdParty, &rec.Input.PreviousClaimsCount, &level, &rec.Score, &reasons, &rec.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan fraud assessment")
		}
		rec.ClaimID = rec.Input.ClaimID
		rec.RiskLevel = fraud.RiskLevel(level)
		rec.Reasons = unmarshalStrings(reasons)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate fraud assessments")
	}
	return out, nil
}
