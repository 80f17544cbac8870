package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/clock"
	"github.com/oks-citadel/apply-notify/internal/pkg/config"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/jwt"
	"github.com/oks-citadel/apply-notify/internal/pkg/mail"
	"github.com/oks-citadel/apply-notify/internal/pkg/validator"
)

type fakeRepo struct {
	mu sync.Mutex

	devices map[int64][]entity.DeviceToken
	prefs   map[int64]entity.Preferences
	records map[int64]*entity.Notification

	created     []entity.CreateNotification
	sent        []int64
	failed      map[int64]string
	invalidated [][]string

	deviceCutoff time.Time
	recordCutoff time.Time

	lastListFilter entity.InboxFilter
	lastListLimit  int32
	lastListOffset int32
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		devices: make(map[int64][]entity.DeviceToken),
		prefs:   make(map[int64]entity.Preferences),
		records: make(map[int64]*entity.Notification),
		failed:  make(map[int64]string),
	}
}

func (f *fakeRepo) UpsertDevice(_ context.Context, in entity.UpsertDevice) (*entity.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := entity.DeviceToken{
		ID:       in.ID,
		UserID:   in.UserID,
		Token:    in.Token,
		Platform: in.Platform,
		Status:   entity.DeviceStatusActive,
	}
	f.devices[in.UserID] = append(f.devices[in.UserID], d)
	return &d, nil
}

func (f *fakeRepo) DeactivateDevice(context.Context, int64, string) error { return nil }

func (f *fakeRepo) ListUserDevices(_ context.Context, userID int64) ([]entity.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[userID], nil
}

func (f *fakeRepo) ListActiveDevices(_ context.Context, userIDs []int64) ([]entity.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.DeviceToken
	for _, id := range userIDs {
		out = append(out, f.devices[id]...)
	}
	return out, nil
}

func (f *fakeRepo) MarkDevicesInvalid(_ context.Context, tokens []string, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tokens)
	return int64(len(tokens)), nil
}

func (f *fakeRepo) PurgeStaleDevices(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deviceCutoff = cutoff
	return 1, nil
}

func (f *fakeRepo) CreateNotification(_ context.Context, data entity.CreateNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, data)
	f.records[data.ID] = &entity.Notification{
		ID:       data.ID,
		UserID:   data.UserID,
		Channel:  data.Channel,
		Status:   entity.NotificationStatusPending,
		Category: data.Category,
		Title:    data.Title,
		Body:     data.Body,
	}
	return nil
}

func (f *fakeRepo) GetNotification(_ context.Context, id int64) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id], nil
}

func (f *fakeRepo) MarkNotificationSent(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	if n, ok := f.records[id]; ok {
		n.Status = entity.NotificationStatusSent
	}
	return true, nil
}

func (f *fakeRepo) MarkNotificationFailed(_ context.Context, id int64, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = reason
	if n, ok := f.records[id]; ok {
		n.Status = entity.NotificationStatusFailed
	}
	return true, nil
}

func (f *fakeRepo) ListNotifications(_ context.Context, userID int64, filter entity.InboxFilter, limit, offset int32) ([]entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListFilter = filter
	f.lastListLimit = limit
	f.lastListOffset = offset
	var out []entity.Notification
	for _, n := range f.records {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.records {
		if n.UserID == userID && n.Status == entity.NotificationStatusSent {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkNotificationRead(_ context.Context, userID, notificationID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.records[notificationID]
	if !ok || n.UserID != userID || n.Status != entity.NotificationStatusSent {
		return false, nil
	}
	n.Status = entity.NotificationStatusRead
	return true, nil
}

func (f *fakeRepo) MarkNotificationsReadAll(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for _, n := range f.records {
		if n.UserID == userID && n.Status == entity.NotificationStatusSent {
			n.Status = entity.NotificationStatusRead
			updated++
		}
	}
	return updated, nil
}

func (f *fakeRepo) SoftDeleteNotification(_ context.Context, userID, notificationID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.records[notificationID]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(f.records, notificationID)
	return true, nil
}

func (f *fakeRepo) PurgeNotifications(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCutoff = cutoff
	return 1, nil
}

func (f *fakeRepo) GetOrCreatePreferences(_ context.Context, userID int64) (*entity.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		return &p, nil
	}
	p := entity.DefaultPreferences(userID)
	f.prefs[userID] = p
	return &p, nil
}

func (f *fakeRepo) UpdatePreferences(_ context.Context, p entity.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[p.UserID] = p
	return nil
}

type fakeMQ struct {
	mu        sync.Mutex
	pushJobs  []PushDispatchJob
	emailJobs []EmailDispatchJob
}

func (f *fakeMQ) PublishPushDispatch(_ context.Context, msg PushDispatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushJobs = append(f.pushJobs, msg)
	return nil
}

func (f *fakeMQ) PublishEmailDispatch(_ context.Context, msg EmailDispatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailJobs = append(f.emailJobs, msg)
	return nil
}

type fakeMail struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type fakeProvider struct {
	mu    sync.Mutex
	name  string
	calls [][]string
	fn    func(tokens []string) []entity.ProviderOutcome
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Send(_ context.Context, _ entity.PushPayload, tokens []string) []entity.ProviderOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokens)
	if f.fn != nil {
		return f.fn(tokens)
	}
	outs := make([]entity.ProviderOutcome, 0, len(tokens))
	for _, t := range tokens {
		outs = append(outs, entity.ProviderOutcome{Token: t, MessageID: "msg-" + t})
	}
	return outs
}

type seqNumberID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixedStringID struct{ v string }

func (s fixedStringID) Generate() string { return s.v }

type testEnv struct {
	uc   *Usecase
	repo *fakeRepo
	mq   *fakeMQ
	mail *fakeMail
	fcm  *fakeProvider
	apns *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, "modules:\n  notification:\n    enabled: true\n")
}

func newTestEnvWithConfig(t *testing.T, rawConfig string) *testEnv {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(rawConfig))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	env := &testEnv{
		repo: newFakeRepo(),
		mq:   &fakeMQ{},
		mail: &fakeMail{},
		fcm:  &fakeProvider{name: "fcm"},
		apns: &fakeProvider{name: "apns"},
	}

	env.uc = NewNotification(Dependency{
		RepoDB:    env.repo,
		Config:    cfg,
		UID:       &seqNumberID{},
		UUID:      fixedStringID{v: "job-1"},
		Clock:     clock.New(),
		Validator: v,
		RepoMail:  env.mail,
		RepoMQ:    env.mq,
		Providers: map[entity.Platform]PushProvider{
			entity.PlatformAndroid: env.fcm,
			entity.PlatformWeb:     env.fcm,
			entity.PlatformIOS:     env.apns,
		},
		Instrument: instrument.NewNoop(),
	})

	return env
}

func (e *testEnv) addDevice(userID int64, token string, platform entity.Platform) {
	e.repo.devices[userID] = append(e.repo.devices[userID], entity.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		Status:   entity.DeviceStatusActive,
	})
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, UserEmail: "user@example.com"})
}
