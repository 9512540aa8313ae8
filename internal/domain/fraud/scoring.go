// Package fraud implements rule-based risk scoring for insurance claims.
package fraud

import (
	"strings"
)

// RiskLevel grades an assessment score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Thresholds and weights of the scoring rules.
const (
	VeryHighAmount = 500000.0
	HighAmount     = 200000.0

	ManyPreviousClaims = 3
	SomePreviousClaims = 1

	MaxScore        = 100.0
	HighRiskScore   = 60.0
	MediumRiskScore = 30.0
)

// SuspiciousKeywords are matched case-insensitively as substrings of the
// claim description, in this order.
var SuspiciousKeywords = []string{
	"sudden",
	"stolen",
	"lost",
	"fire",
	"cash",
	"urgent",
	"fake",
	"duplicate",
}

// NoIndicatorsReason is reported when no rule fires.
const NoIndicatorsReason = "No obvious fraud indicators detected."

// Score evaluates a claim against the rule set.  The result is deterministic
// and does not depend on the tenant.
func Score(in ClaimInput) Assessment {
	score := 0.0
	var reasons []string

	switch {
	case in.Amount > VeryHighAmount:
		score += 40
		reasons = append(reasons, "Claim amount is very high.")
	case in.Amount > HighAmount:
		score += 25
		reasons = append(reasons, "Claim amount is high.")
	}

	switch {
	case in.PreviousClaimsCount > ManyPreviousClaims:
		score += 25
		reasons = append(reasons, "Customer has many previous claims.")
	case in.PreviousClaimsCount > SomePreviousClaims:
		score += 10
		reasons = append(reasons, "Customer has some previous claims.")
	}

	if hits := MatchKeywords(in.Description); len(hits) > 0 {
		score += 20
		reasons = append(reasons, "Suspicious keywords found: "+strings.Join(hits, ", "))
	}

	if in.IsThirdParty {
		score += 10
		reasons = append(reasons, "Third-party claim.")
	}

	if score > MaxScore {
		score = MaxScore
	}
	if len(reasons) == 0 {
		reasons = []string{NoIndicatorsReason}
	}

	return Assessment{
		ClaimID:   in.ClaimID,
		RiskLevel: LevelFor(score),
		Score:     score,
		Reasons:   reasons,
	}
}

// LevelFor maps a score to its risk level.
func LevelFor(score float64) RiskLevel {
	switch {
	case score >= HighRiskScore:
		return RiskHigh
	case score >= MediumRiskScore:
		return RiskMedium
	default:
		return RiskLow
	}
}

// MatchKeywords returns the suspicious keywords present in text, in list order.
func MatchKeywords(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, k := range SuspiciousKeywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}
	return hits
}
