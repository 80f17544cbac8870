package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/notification/inbound"
	"github.com/oks-citadel/apply-notify/internal/notification/outbound/db"
	"github.com/oks-citadel/apply-notify/internal/notification/outbound/email"
	"github.com/oks-citadel/apply-notify/internal/notification/outbound/mq"
	"github.com/oks-citadel/apply-notify/internal/notification/outbound/push"
	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
	"github.com/oks-citadel/apply-notify/internal/pkg/clock"
	"github.com/oks-citadel/apply-notify/internal/pkg/config"
	"github.com/oks-citadel/apply-notify/internal/pkg/goroutine"
	"github.com/oks-citadel/apply-notify/internal/pkg/idempotency"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/mail"
	"github.com/oks-citadel/apply-notify/internal/pkg/messaging"
	"github.com/oks-citadel/apply-notify/internal/pkg/router"
	"github.com/oks-citadel/apply-notify/internal/pkg/storage"
	"github.com/oks-citadel/apply-notify/internal/pkg/uid"
	"github.com/oks-citadel/apply-notify/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Mail        mail.Mail
	Storage     storage.Storage
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	ctx := dep.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	repoMail := email.New(dep.Mail, dep.Instrument)
	repoMQ := mq.NewMessaging(dep.Messaging, dep.Instrument)

	fcm, err := push.NewFCM(ctx, dep.Config.GetBinary("push.fcm.credentials_json"), dep.Instrument)
	if err != nil {
		return err
	}

	apns, err := push.NewAPNS(ctx, push.APNSConfig{
		AuthKey:    dep.Config.GetBinary("push.apns.auth_key"),
		KeyID:      dep.Config.GetString("push.apns.key_id"),
		TeamID:     dep.Config.GetString("push.apns.team_id"),
		Topic:      dep.Config.GetString("push.apns.topic"),
		Production: dep.Config.GetBool("push.apns.production"),
	}, dep.Instrument)
	if err != nil {
		return err
	}

	uc := usecase.NewNotification(usecase.Dependency{
		RepoDB:    dbNotif,
		Config:    dep.Config,
		UID:       dep.UID,
		UUID:      dep.UUID,
		Clock:     dep.Clock,
		Validator: dep.Validator,
		RepoMail:  repoMail,
		RepoMQ:    repoMQ,
		Storage:   dep.Storage,
		Providers: map[entity.Platform]usecase.PushProvider{
			entity.PlatformAndroid: fcm,
			entity.PlatformWeb:     fcm,
			entity.PlatformIOS:     apns,
		},
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, dep.Idempotency, uc, dep.Instrument)

		dep.Goroutine.Go(dep.Ctx, func(pCtx context.Context) error {
			uc.RunRetentionSweep(pCtx)
			return nil
		})
	}

	return nil
}
