package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func TestScore_NoIndicators(t *testing.T) {
	a := Score(ClaimInput{ClaimID: "C-1", Amount: 1000, Description: "minor dent"})
	assert.Equal(t, "C-1", a.ClaimID)
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, RiskLow, a.RiskLevel)
	assert.Equal(t, []string{NoIndicatorsReason}, a.Reasons)
}

func TestScore_AllRulesCapped(t *testing.T) {
	a := Score(ClaimInput{
		ClaimID:             "C-2",
		Amount:              600000,
		Description:         "Sudden FIRE, urgent cash needed",
		IsThirdParty:        true,
		PreviousClaimsCount: 5,
	})
	assert.Equal(t, 95.0, a.Score)
	assert.Equal(t, RiskHigh, a.RiskLevel)
	assert.Equal(t, []string{
		"Claim amount is very high.",
		"Customer has many previous claims.",
		"Suspicious keywords found: sudden, fire, cash, urgent",
		"Third-party claim.",
	}, a.Reasons)
}

func TestScore_Medium(t *testing.T) {
	a := Score(ClaimInput{ClaimID: "C-3", Amount: 250000, PreviousClaimsCount: 2})
	assert.Equal(t, 35.0, a.Score)
	assert.Equal(t, RiskMedium, a.RiskLevel)
	assert.Equal(t, []string{"Claim amount is high.", "Customer has some previous claims."}, a.Reasons)
}

func TestScore_BoundariesAreStrict(t *testing.T) {
	a := Score(ClaimInput{ClaimID: "C-4", Amount: 200000, PreviousClaimsCount: 1})
	assert.Equal(t, 0.0, a.Score)

	a = Score(ClaimInput{ClaimID: "C-5", Amount: 500000, PreviousClaimsCount: 3})
	assert.Equal(t, 35.0, a.Score)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, RiskLow, LevelFor(29.9))
	assert.Equal(t, RiskMedium, LevelFor(30))
	assert.Equal(t, RiskMedium, LevelFor(59))
	assert.Equal(t, RiskHigh, LevelFor(60))
}

func TestMatchKeywords(t *testing.T) {
	assert.Equal(t, []string{"stolen", "duplicate"}, MatchKeywords("DUPLICATE invoice for stolen car"))
	assert.Empty(t, MatchKeywords("routine service"))
}

func TestClaimInput_Validate(t *testing.T) {
	assert.NoError(t, ClaimInput{ClaimID: "x"}.Validate())
	assert.True(t, errors.IsCode(ClaimInput{}.Validate(), errors.ErrCodeClaimInvalid))
	assert.True(t, errors.IsCode(ClaimInput{ClaimID: "x", Amount: -1}.Validate(), errors.ErrCodeClaimInvalid))
	assert.True(t, errors.IsCode(ClaimInput{ClaimID: "x", PreviousClaimsCount: -1}.Validate(), errors.ErrCodeClaimInvalid))
}
