package usecase

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/clock"
	"github.com/oks-citadel/apply-notify/internal/pkg/config"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/mail"
	"github.com/oks-citadel/apply-notify/internal/pkg/storage"
	"github.com/oks-citadel/apply-notify/internal/pkg/uid"
	"github.com/oks-citadel/apply-notify/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

type repoDB interface {
	UpsertDevice(ctx context.Context, in entity.UpsertDevice) (*entity.DeviceToken, error)
	DeactivateDevice(ctx context.Context, userID int64, token string) error
	ListUserDevices(ctx context.Context, userID int64) ([]entity.DeviceToken, error)
	ListActiveDevices(ctx context.Context, userIDs []int64) ([]entity.DeviceToken, error)
	MarkDevicesInvalid(ctx context.Context, tokens []string, reason string) (int64, error)
	PurgeStaleDevices(ctx context.Context, cutoff time.Time) (int64, error)

	CreateNotification(ctx context.Context, data entity.CreateNotification) error
	GetNotification(ctx context.Context, id int64) (*entity.Notification, error)
	MarkNotificationSent(ctx context.Context, id int64) (bool, error)
	MarkNotificationFailed(ctx context.Context, id int64, reason string) (bool, error)
	ListNotifications(ctx context.Context, userID int64, filter entity.InboxFilter, limit, offset int32) ([]entity.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) (bool, error)
	MarkNotificationsReadAll(ctx context.Context, userID int64) (int64, error)
	SoftDeleteNotification(ctx context.Context, userID, notificationID int64) (bool, error)
	PurgeNotifications(ctx context.Context, cutoff time.Time) (int64, error)

	GetOrCreatePreferences(ctx context.Context, userID int64) (*entity.Preferences, error)
	UpdatePreferences(ctx context.Context, p entity.Preferences) error
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoMQ interface {
	PublishPushDispatch(ctx context.Context, msg PushDispatchJob) error
	PublishEmailDispatch(ctx context.Context, msg EmailDispatchJob) error
}

// PushProvider is one platform adapter. Adapters always return one outcome
// per token and never abort sibling platforms.
type PushProvider interface {
	Name() string
	Send(ctx context.Context, payload entity.PushPayload, tokens []string) []entity.ProviderOutcome
}

type Usecase struct {
	repoDB    repoDB
	cfg       config.Config
	uid       uid.NumberID
	uuid      uid.StringID
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	repoMQ    repoMQ
	storage   storage.Storage
	providers map[entity.Platform]PushProvider
	ins       instrument.Instrumentation
	metrics   *dispatchMetrics
	streamMu  sync.RWMutex
	streams   map[int64]map[*subscriber]struct{}
}

type Dependency struct {
	RepoDB     repoDB
	Config     config.Config
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	RepoMQ     repoMQ
	Storage    storage.Storage
	Providers  map[entity.Platform]PushProvider
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:    dep.RepoDB,
		cfg:       dep.Config,
		uid:       dep.UID,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		repoMQ:    dep.RepoMQ,
		storage:   dep.Storage,
		providers: dep.Providers,
		ins:       dep.Instrument,
		metrics:   &dispatchMetrics{},
		streams:   make(map[int64]map[*subscriber]struct{}),
	}
	uc.metrics.register(dep.Instrument.Meter("notification.usecase"))

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) renderTemplate(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"support_email": "support@apply.careers",
		"company_name":  "Apply Careers",
		"year":          s.clock.Now().Format("2006"),
	}
}

// dispatchMetrics tracks cumulative delivery outcomes, observed through the
// meter callback.
type dispatchMetrics struct {
	success     atomic.Int64
	failure     atomic.Int64
	invalidated atomic.Int64
}

func (m *dispatchMetrics) register(meter metric.Meter) {
	success, err := meter.Int64ObservableCounter("notification_push_success_total")
	if err != nil {
		return
	}
	failure, err := meter.Int64ObservableCounter("notification_push_failure_total")
	if err != nil {
		return
	}
	invalidated, err := meter.Int64ObservableCounter("notification_device_invalidated_total")
	if err != nil {
		return
	}

	_, _ = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(success, m.success.Load())
		o.ObserveInt64(failure, m.failure.Load())
		o.ObserveInt64(invalidated, m.invalidated.Load())
		return nil
	}, success, failure, invalidated)
}
