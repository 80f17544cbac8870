package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
	"github.com/oks-citadel/apply-notify/internal/pkg/idempotency"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/messaging"
	"github.com/oks-citadel/apply-notify/internal/shared/event"
)

type fakeConsumerUC struct {
	dispatchIn    *usecase.DispatchPushInput
	dispatchCalls int
	deliverIn     *usecase.DeliverEmailInput
	consumeIn     *usecase.ConsumeApplicationStatusInput
	err           error
}

func (f *fakeConsumerUC) DispatchPush(_ context.Context, in usecase.DispatchPushInput) ([]entity.DispatchResult, error) {
	f.dispatchIn = &in
	f.dispatchCalls++
	return nil, f.err
}

func (f *fakeConsumerUC) DeliverEmail(_ context.Context, in usecase.DeliverEmailInput) error {
	f.deliverIn = &in
	return f.err
}

func (f *fakeConsumerUC) ConsumeApplicationStatus(_ context.Context, in usecase.ConsumeApplicationStatusInput) error {
	f.consumeIn = &in
	return f.err
}

// passthroughIdemp mirrors the tracker's state machine in memory: a succeeded
// key is skipped on replay, a failed key runs again.
type passthroughIdemp struct {
	keys []string
	seen map[string]bool
}

func (p *passthroughIdemp) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (p *passthroughIdemp) MarkCompleted(context.Context, string, time.Duration) error { return nil }

func (p *passthroughIdemp) MarkFailed(context.Context, string, time.Duration) error { return nil }

func (p *passthroughIdemp) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	p.keys = append(p.keys, key)
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	if p.seen[key] {
		return nil
	}
	if err := fn(ctx); err != nil {
		return err
	}
	p.seen[key] = true
	return nil
}

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m *fakeMessage) Body() []byte                  { return m.body }
func (m *fakeMessage) Key() []byte                   { return nil }
func (m *fakeMessage) Headers() []messaging.Header   { return m.headers }
func (m *fakeMessage) Attributes() map[string]string { return nil }
func (m *fakeMessage) ID() string                    { return "msg-1" }
func (m *fakeMessage) Topic() string                 { return "" }
func (m *fakeMessage) Subject() string               { return "" }
func (m *fakeMessage) Timestamp() time.Time          { return time.Time{} }
func (m *fakeMessage) Ack(context.Context) error     { return nil }

type staticUUID struct{}

func (staticUUID) Generate() string { return "generated-cid" }

func newTestHandler(uc ucConsumer, idemp idempotency.Idempotency) *MQHandler {
	return &MQHandler{uc: uc, uuid: staticUUID{}, idemp: idemp, ins: instrument.NewNoop()}
}

func TestPushDispatchNotification(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{}
	idemp := &passthroughIdemp{}
	h := newTestHandler(fake, idemp)
	body, _ := json.Marshal(event.PushDispatchMessage{
		JobID:    "job-9",
		Targets:  []event.PushDispatchTarget{{UserID: 1, NotificationID: 11}},
		Title:    "t",
		Body:     "b",
		Category: "messages",
		Priority: "high",
	})

	// Act
	err := h.PushDispatchNotification(context.Background(), &fakeMessage{body: body})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fake.dispatchIn == nil {
		t.Fatalf("expected dispatch invoked")
	}
	if fake.dispatchIn.JobID != "job-9" || len(fake.dispatchIn.Targets) != 1 {
		t.Fatalf("unexpected input: %+v", fake.dispatchIn)
	}
	if fake.dispatchIn.Payload.Priority != entity.PriorityHigh {
		t.Fatalf("expected priority mapped, got %v", fake.dispatchIn.Payload.Priority)
	}
	if len(idemp.keys) != 1 || idemp.keys[0] != "notification:push_dispatch:job-9" {
		t.Fatalf("unexpected idempotency keys: %v", idemp.keys)
	}
}

func TestPushDispatchNotificationRedeliverySkipped(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{}
	idemp := &passthroughIdemp{}
	h := newTestHandler(fake, idemp)
	body, _ := json.Marshal(event.PushDispatchMessage{JobID: "job-10"})

	// Act
	_ = h.PushDispatchNotification(context.Background(), &fakeMessage{body: body})
	fake.dispatchIn = nil
	err := h.PushDispatchNotification(context.Background(), &fakeMessage{body: body})

	// Assert
	if err != nil {
		t.Fatalf("expected no error on redelivery, got %v", err)
	}
	if fake.dispatchIn != nil {
		t.Fatalf("expected redelivered job skipped")
	}
}

func TestPushDispatchNotificationFailedAttemptRetried(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{err: errors.New("push dispatch delivered to no device")}
	idemp := &passthroughIdemp{}
	h := newTestHandler(fake, idemp)
	body, _ := json.Marshal(event.PushDispatchMessage{JobID: "job-13"})

	// Act
	first := h.PushDispatchNotification(context.Background(), &fakeMessage{body: body})
	fake.err = nil
	second := h.PushDispatchNotification(context.Background(), &fakeMessage{body: body})

	// Assert
	if first == nil {
		t.Fatalf("expected first delivery to surface the dispatch failure")
	}
	if second != nil {
		t.Fatalf("expected redelivery to run again and succeed, got %v", second)
	}
	if fake.dispatchCalls != 2 {
		t.Fatalf("expected dispatch invoked on both deliveries, got %d", fake.dispatchCalls)
	}
}

func TestPushDispatchNotificationMalformedBodyDropped(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{}
	h := newTestHandler(fake, &passthroughIdemp{})

	// Act
	err := h.PushDispatchNotification(context.Background(), &fakeMessage{body: []byte("{broken")})

	// Assert
	if err != nil {
		t.Fatalf("expected malformed body dropped without error, got %v", err)
	}
	if fake.dispatchIn != nil {
		t.Fatalf("expected dispatch not invoked")
	}
}

func TestEmailDispatchNotification(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{}
	idemp := &passthroughIdemp{}
	h := newTestHandler(fake, idemp)
	body, _ := json.Marshal(event.EmailDispatchMessage{
		JobID:          "job-11",
		NotificationID: 21,
		Email:          "user@example.com",
		Subject:        "s",
		HTMLBody:       "<p>b</p>",
	})

	// Act
	err := h.EmailDispatchNotification(context.Background(), &fakeMessage{body: body})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fake.deliverIn == nil || fake.deliverIn.NotificationID != 21 {
		t.Fatalf("unexpected input: %+v", fake.deliverIn)
	}
	if idemp.keys[0] != "notification:email_dispatch:job-11" {
		t.Fatalf("unexpected idempotency key: %v", idemp.keys)
	}
}

func TestEmailDispatchNotificationErrorRequeues(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{err: errors.New("smtp down")}
	h := newTestHandler(fake, &passthroughIdemp{})
	body, _ := json.Marshal(event.EmailDispatchMessage{JobID: "job-12", NotificationID: 22})

	// Act
	err := h.EmailDispatchNotification(context.Background(), &fakeMessage{body: body})

	// Assert
	if err == nil {
		t.Fatalf("expected handler error to propagate for broker retry")
	}
}

func TestApplicationStatusNotification(t *testing.T) {
	// Arrange
	fake := &fakeConsumerUC{}
	h := newTestHandler(fake, &passthroughIdemp{})
	body, _ := json.Marshal(event.ApplicationStatusMessage{
		UserID:        5,
		Email:         "user@example.com",
		ApplicationID: 300,
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		NewStatus:     "interview",
	})

	// Act
	err := h.ApplicationStatusNotification(context.Background(), &fakeMessage{body: body, headers: []messaging.Header{
		{Key: "cID", Value: []byte("req-123")},
	}})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fake.consumeIn == nil || fake.consumeIn.ApplicationID != 300 {
		t.Fatalf("unexpected input: %+v", fake.consumeIn)
	}
}
