package inbound

import (
	"context"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
)

type ucConsumer interface {
	DispatchPush(ctx context.Context, in usecase.DispatchPushInput) ([]entity.DispatchResult, error)
	DeliverEmail(ctx context.Context, in usecase.DeliverEmailInput) error
	ConsumeApplicationStatus(ctx context.Context, in usecase.ConsumeApplicationStatusInput) error
}

type ucStream interface {
	StreamNotifications(ctx context.Context, userID int64) <-chan usecase.StreamEvent
}

type uc interface {
	ucConsumer
	ucStream

	DeviceRegister(ctx context.Context, in usecase.DeviceRegisterInput) (*entity.DeviceToken, error)
	DeviceRemove(ctx context.Context, in usecase.DeviceRemoveInput) error
	ListDevices(ctx context.Context) ([]entity.DeviceToken, error)
	GetPreferences(ctx context.Context) (*entity.Preferences, error)
	UpdatePreferences(ctx context.Context, in usecase.UpdatePreferencesInput) (*entity.Preferences, error)
	SendPush(ctx context.Context, in usecase.SendPushInput) (*usecase.SendPushOutput, error)
	SendEmail(ctx context.Context, in usecase.SendEmailInput) (*usecase.SendEmailOutput, error)
	ListInbox(ctx context.Context, in usecase.ListInboxInput) ([]entity.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkInboxRead(ctx context.Context, in usecase.MarkInboxReadInput) error
	MarkAllInboxRead(ctx context.Context) error
	DeleteInbox(ctx context.Context, in usecase.DeleteInboxInput) error
}
