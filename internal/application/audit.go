package application

import (
	"context"

	"github.com/veribank/faceauth/internal/domain"
)

// recordAttempt writes one audit entry. Insert failure is logged and
// swallowed; the audit trail never blocks or alters the step it describes.
func (s *Service) recordAttempt(ctx context.Context, attempt domain.AuthenticationAttempt) {
	if err := s.audit.Insert(ctx, attempt); err != nil {
		s.logger.WarnContext(ctx, "audit insert failed",
			"module", "application",
			"layer", "application",
			"operation", "record_attempt",
			"outcome", "failure",
			"user_id", attempt.UserID,
			"activity_type", attempt.ActivityType,
			"error", err.Error(),
		)
	}
}
