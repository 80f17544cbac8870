package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

type (
	DeviceRegisterInput struct {
		DeviceToken string `validate:"required"`
		Platform    string `validate:"required,oneof=android ios web"`
		Name        string `validate:"omitempty,max=120"`
		Model       string `validate:"omitempty,max=120"`
		OSVersion   string `validate:"omitempty,max=60"`
		AppVersion  string `validate:"omitempty,max=60"`
		Language    string `validate:"omitempty,max=12"`
		Timezone    string `validate:"omitempty,max=64"`
	}
)

// DeviceRegister upserts the device under (token, platform). A token already
// owned by someone else migrates to the caller, covering account switches on
// shared hardware.
func (s *Usecase) DeviceRegister(ctx context.Context, in DeviceRegisterInput) (_ *entity.DeviceToken, err error) {
	ctx, span := s.startSpan(ctx, "DeviceRegister")
	defer span.End()

	in.DeviceToken = strings.TrimSpace(in.DeviceToken)
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	dev, err := s.repoDB.UpsertDevice(ctx, entity.UpsertDevice{
		ID:         s.uid.Generate(),
		UserID:     clm.UserID,
		Token:      in.DeviceToken,
		Platform:   entity.PlatformFromString(in.Platform),
		Name:       in.Name,
		Model:      in.Model,
		OSVersion:  in.OSVersion,
		AppVersion: in.AppVersion,
		Language:   in.Language,
		Timezone:   in.Timezone,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo register device token", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return dev, nil
}
