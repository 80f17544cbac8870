package usecase

import (
	"context"
	"log/slog"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

type UpdatePreferencesInput struct {
	EmailEnabled bool
	PushEnabled  bool

	EmailJobAlerts         bool
	EmailApplicationStatus bool
	EmailMessages          bool
	EmailPromotions        bool

	PushJobAlerts         bool
	PushApplicationStatus bool
	PushMessages          bool
	PushPromotions        bool
}

// GetPreferences returns the caller's opt-in matrix, materializing the
// defaults on first access.
func (s *Usecase) GetPreferences(ctx context.Context) (*entity.Preferences, error) {
	ctx, span := s.startSpan(ctx, "GetPreferences")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.repoDB.GetOrCreatePreferences(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get preferences", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return prefs, nil
}

// UpdatePreferences replaces the caller's full opt-in matrix. Partial updates
// are not supported, clients submit the whole matrix every time.
func (s *Usecase) UpdatePreferences(ctx context.Context, in UpdatePreferencesInput) (*entity.Preferences, error) {
	ctx, span := s.startSpan(ctx, "UpdatePreferences")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.repoDB.GetOrCreatePreferences(ctx, clm.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to repo get preferences", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	prefs := entity.Preferences{
		UserID:                 clm.UserID,
		EmailEnabled:           in.EmailEnabled,
		PushEnabled:            in.PushEnabled,
		EmailJobAlerts:         in.EmailJobAlerts,
		EmailApplicationStatus: in.EmailApplicationStatus,
		EmailMessages:          in.EmailMessages,
		EmailPromotions:        in.EmailPromotions,
		PushJobAlerts:          in.PushJobAlerts,
		PushApplicationStatus:  in.PushApplicationStatus,
		PushMessages:           in.PushMessages,
		PushPromotions:         in.PushPromotions,
	}

	if err := s.repoDB.UpdatePreferences(ctx, prefs); err != nil {
		slog.ErrorContext(ctx, "failed to repo update preferences", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &prefs, nil
}
