package indexing

import (
	"context"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

// ClaimAuditHandler writes scored claims to the audit log.  High risk claims
// are logged at warn level so they surface in alerting.
func ClaimAuditHandler(logger logging.Logger, metrics Metrics) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.Message) error {
		env, err := kafka.MessageToEventEnvelope(msg)
		var p kafka.ClaimScoredPayload
		if err == nil {
			err = env.DecodePayload(&p)
		}
		if metrics != nil {
			metrics.RecordEventConsumed(msg.Topic, err == nil)
		}
		if err != nil {
			return err
		}

		fields := []logging.Field{
			logging.String("assessment_id", p.AssessmentID),
			logging.String("tenant_id", p.TenantID),
			logging.String("claim_id", p.ClaimID),
			logging.String("risk_level", p.RiskLevel),
			logging.Float64("score", p.Score),
			logging.Strings("reasons", p.Reasons),
		}
		if p.RiskLevel == "High" {
			logger.Warn("High risk claim scored", fields...)
		} else {
			logger.Info("Claim scored", fields...)
		}
		return nil
	}
}
