package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

type (
	DeviceRemoveInput struct {
		DeviceToken string `validate:"required"`
	}
)

// DeviceRemove deactivates the caller's device. Removing a token that was
// never registered is a no-op, never an error.
func (s *Usecase) DeviceRemove(ctx context.Context, in DeviceRemoveInput) error {
	ctx, span := s.startSpan(ctx, "DeviceRemove")
	defer span.End()

	in.DeviceToken = strings.TrimSpace(in.DeviceToken)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.repoDB.DeactivateDevice(ctx, clm.UserID, in.DeviceToken); err != nil {
		slog.ErrorContext(ctx, "failed to repo remove device token", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
