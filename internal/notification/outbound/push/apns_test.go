package push

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/sideshow/apns2"
)

type fakeAPNSClient struct {
	calls []*apns2.Notification
	fn    func(n *apns2.Notification) (*apns2.Response, error)
}

func (f *fakeAPNSClient) PushWithContext(_ apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	f.calls = append(f.calls, n)
	if f.fn != nil {
		return f.fn(n)
	}
	return &apns2.Response{StatusCode: http.StatusOK, ApnsID: "apns-" + n.DeviceToken}, nil
}

func TestAPNSSendSuccess(t *testing.T) {
	// Arrange
	client := &fakeAPNSClient{}
	a := NewAPNSWithClient(client, "careers.apply.app", instrument.NewNoop())

	// Act
	outs := a.Send(context.Background(), entity.PushPayload{Title: "t", Body: "b"}, []string{"tok-1", "tok-2"})

	// Assert
	if len(outs) != 2 {
		t.Fatalf("expected one outcome per token, got %d", len(outs))
	}
	if outs[0].MessageID != "apns-tok-1" || outs[1].MessageID != "apns-tok-2" {
		t.Fatalf("expected apns ids carried through, got %+v", outs)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected one round trip per token, got %d", len(client.calls))
	}
	if client.calls[0].Topic != "careers.apply.app" {
		t.Fatalf("expected configured topic on the notification, got %q", client.calls[0].Topic)
	}
}

func TestAPNSSendNotInitialized(t *testing.T) {
	// Arrange
	a := NewAPNSWithClient(nil, "careers.apply.app", instrument.NewNoop())

	// Act
	outs := a.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"tok"})

	// Assert
	if len(outs) != 1 || !strings.Contains(outs[0].Error, ReasonNotInitialized) {
		t.Fatalf("expected not-initialized failure, got %+v", outs)
	}
}

func TestAPNSSendClassifiesUnregistered(t *testing.T) {
	// Arrange
	client := &fakeAPNSClient{fn: func(n *apns2.Notification) (*apns2.Response, error) {
		return &apns2.Response{StatusCode: http.StatusGone, Reason: apns2.ReasonUnregistered}, nil
	}}
	a := NewAPNSWithClient(client, "careers.apply.app", instrument.NewNoop())

	// Act
	outs := a.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"dead"})

	// Assert
	if !strings.HasPrefix(outs[0].Error, ReasonUnregistered+":") {
		t.Fatalf("expected unregistered classification, got %q", outs[0].Error)
	}
}

func TestAPNSSendContinuesPastFailingToken(t *testing.T) {
	// Arrange
	client := &fakeAPNSClient{fn: func(n *apns2.Notification) (*apns2.Response, error) {
		if n.DeviceToken == "bad" {
			return nil, errors.New("apns: connection reset")
		}
		return &apns2.Response{StatusCode: http.StatusOK, ApnsID: "apns-ok"}, nil
	}}
	a := NewAPNSWithClient(client, "careers.apply.app", instrument.NewNoop())

	// Act
	outs := a.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"bad", "good"})

	// Assert
	if outs[0].Error == "" {
		t.Fatalf("expected first token to fail, got %+v", outs[0])
	}
	if outs[1].Error != "" || outs[1].MessageID != "apns-ok" {
		t.Fatalf("expected second token delivered, got %+v", outs[1])
	}
}

func TestAPNSTranslate(t *testing.T) {
	// Arrange
	a := NewAPNSWithClient(&fakeAPNSClient{}, "careers.apply.app", instrument.NewNoop())

	// Act
	low := a.translate(entity.PushPayload{Title: "t", Priority: entity.PriorityLow}, "tok")
	high := a.translate(entity.PushPayload{Title: "t", Priority: entity.PriorityUrgent, TTLSeconds: 30}, "tok")

	// Assert
	if low.Priority != apns2.PriorityLow {
		t.Fatalf("expected low wire priority, got %d", low.Priority)
	}
	if high.Priority != apns2.PriorityHigh {
		t.Fatalf("expected high wire priority, got %d", high.Priority)
	}
	if high.Expiration.IsZero() {
		t.Fatalf("expected expiration set from ttl")
	}
	if low.DeviceToken != "tok" || low.Topic != "careers.apply.app" {
		t.Fatalf("unexpected notification envelope: %+v", low)
	}
}
