package usecase

import (
	"context"
	"log/slog"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

// ListDevices returns every device token the caller has registered,
// newest first, regardless of status.
func (s *Usecase) ListDevices(ctx context.Context) ([]entity.DeviceToken, error) {
	ctx, span := s.startSpan(ctx, "ListDevices")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := s.repoDB.ListUserDevices(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list user devices", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return devices, nil
}
