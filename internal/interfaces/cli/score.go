package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/InsureDoc-Intelligence/internal/application/claims"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/fraud"
)

// ScoreResult wraps an assessment for the score command.
type ScoreResult struct {
	*fraud.Assessment
}

func (r ScoreResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Claim %s: %s risk (score %.0f)", r.ClaimID, r.RiskLevel, r.Score)
	for _, reason := range r.Reasons {
		sb.WriteString("\n  - ")
		sb.WriteString(reason)
	}
	return sb.String()
}

func (r ScoreResult) TableHeaders() []string {
	return []string{"CLAIM", "RISK", "SCORE", "REASONS"}
}

func (r ScoreResult) TableRows() [][]string {
	return [][]string{{
		r.ClaimID,
		string(r.RiskLevel),
		fmt.Sprintf("%.0f", r.Score),
		strings.Join(r.Reasons, " "),
	}}
}

// NewScoreCmd scores a claim with the rule engine.  Nothing is persisted.
func NewScoreCmd() *cobra.Command {
	var in fraud.ClaimInput

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Score a claim for fraud risk",
		Example: `  insuredoc score --claim-id CLM-1 --amount 250000 --description "sudden fire" --previous 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := claims.NewService(loggerFor(cmd))
			a, err := svc.Score(cmd.Context(), uuid.Nil, uuid.Nil, in)
			if err != nil {
				return err
			}
			return PrintResult(cmd, ScoreResult{Assessment: a})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.ClaimID, "claim-id", "", "claim identifier [REQUIRED]")
	f.Float64Var(&in.Amount, "amount", 0, "claimed amount")
	f.StringVar(&in.Description, "description", "", "free-text claim description")
	f.BoolVar(&in.IsThirdParty, "third-party", false, "the claim is made by a third party")
	f.IntVar(&in.PreviousClaimsCount, "previous", 0, "number of previous claims by the customer")
	_ = cmd.MarkFlagRequired("claim-id")
	return cmd
}
