package fraud

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// ClaimInput is a claim submitted for scoring.
type ClaimInput struct {
	ClaimID             string  `json:"claim_id"`
	Amount              float64 `json:"amount"`
	Description         string  `json:"description"`
	IsThirdParty        bool    `json:"is_third_party"`
	PreviousClaimsCount int     `json:"previous_claims_count"`
}

// Validate checks the input before scoring.
func (c ClaimInput) Validate() error {
	if strings.TrimSpace(c.ClaimID) == "" {
		return errors.New(errors.ErrCodeClaimInvalid, "claim_id is required")
	}
	if c.Amount < 0 {
		return errors.New(errors.ErrCodeClaimInvalid, "amount must not be negative")
	}
	if c.PreviousClaimsCount < 0 {
		return errors.New(errors.ErrCodeClaimInvalid, "previous_claims_count must not be negative")
	}
	return nil
}

// Assessment is the scored outcome returned to callers.
type Assessment struct {
	ClaimID   string    `json:"claim_id"`
	RiskLevel RiskLevel `json:"risk_level"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
}

// Record is a persisted assessment with its tenant attribution.
type Record struct {
	ID       uuid.UUID  `json:"id"`
	TenantID uuid.UUID  `json:"tenant_id"`
	UserID   uuid.UUID  `json:"user_id"`
	Input    ClaimInput `json:"input"`
	Assessment
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord wraps an assessment for persistence.
func NewRecord(tenantID, userID uuid.UUID, in ClaimInput, a Assessment) *Record {
	return &Record{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		Input:      in,
		Assessment: a,
		CreatedAt:  time.Now().UTC(),
	}
}
