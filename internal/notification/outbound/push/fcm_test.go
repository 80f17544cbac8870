package push

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
)

type fakeMessagingClient struct {
	calls []*messaging.MulticastMessage
	fn    func(msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

func (f *fakeMessagingClient) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.calls = append(f.calls, msg)
	if f.fn != nil {
		return f.fn(msg)
	}
	resps := make([]*messaging.SendResponse, 0, len(msg.Tokens))
	for i := range msg.Tokens {
		resps = append(resps, &messaging.SendResponse{Success: true, MessageID: fmt.Sprintf("projects/p/messages/%d", i)})
	}
	return &messaging.BatchResponse{SuccessCount: len(resps), Responses: resps}, nil
}

func TestFCMSendSuccess(t *testing.T) {
	// Arrange
	client := &fakeMessagingClient{}
	f := NewFCMWithClient(client, instrument.NewNoop())

	// Act
	outs := f.Send(context.Background(), entity.PushPayload{Title: "t", Body: "b"}, []string{"tok-1", "tok-2"})

	// Assert
	if len(outs) != 2 {
		t.Fatalf("expected one outcome per token, got %d", len(outs))
	}
	for _, o := range outs {
		if o.Error != "" || o.MessageID == "" {
			t.Fatalf("expected success outcome, got %+v", o)
		}
	}
}

func TestFCMSendNotInitialized(t *testing.T) {
	// Arrange
	f := NewFCMWithClient(nil, instrument.NewNoop())

	// Act
	outs := f.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"tok-1", "tok-2"})

	// Assert
	if len(outs) != 2 {
		t.Fatalf("expected one outcome per token, got %d", len(outs))
	}
	for _, o := range outs {
		if !strings.Contains(o.Error, ReasonNotInitialized) {
			t.Fatalf("expected not-initialized failure, got %+v", o)
		}
	}
}

func TestFCMSendCallFailureFailsWholeBatch(t *testing.T) {
	// Arrange
	client := &fakeMessagingClient{fn: func(*messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		return nil, errors.New("fcm: quota exceeded")
	}}
	f := NewFCMWithClient(client, instrument.NewNoop())

	// Act
	outs := f.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"tok-1", "tok-2"})

	// Assert
	for _, o := range outs {
		if o.Error != "fcm: quota exceeded" {
			t.Fatalf("expected the call error on every token, got %+v", o)
		}
	}
}

func TestFCMSendMapsPerTokenFailures(t *testing.T) {
	// Arrange
	client := &fakeMessagingClient{fn: func(msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
		return &messaging.BatchResponse{
			SuccessCount: 1,
			FailureCount: 1,
			Responses: []*messaging.SendResponse{
				{Success: true, MessageID: "projects/p/messages/1"},
				{Success: false, Error: errors.New("requested entity was not found")},
			},
		}, nil
	}}
	f := NewFCMWithClient(client, instrument.NewNoop())

	// Act
	outs := f.Send(context.Background(), entity.PushPayload{Title: "t"}, []string{"tok-ok", "tok-bad"})

	// Assert
	if outs[0].Token != "tok-ok" || outs[0].Error != "" {
		t.Fatalf("expected first token to succeed, got %+v", outs[0])
	}
	if outs[1].Token != "tok-bad" || outs[1].Error == "" {
		t.Fatalf("expected second token to fail, got %+v", outs[1])
	}
}

func TestFCMSendSplitsLargeBatches(t *testing.T) {
	// Arrange
	client := &fakeMessagingClient{}
	f := NewFCMWithClient(client, instrument.NewNoop())
	tokens := make([]string, fcmBatchSize+1)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}

	// Act
	outs := f.Send(context.Background(), entity.PushPayload{Title: "t"}, tokens)

	// Assert
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 multicast calls, got %d", len(client.calls))
	}
	if len(client.calls[0].Tokens) != fcmBatchSize || len(client.calls[1].Tokens) != 1 {
		t.Fatalf("unexpected batch split: %d/%d", len(client.calls[0].Tokens), len(client.calls[1].Tokens))
	}
	if len(outs) != len(tokens) {
		t.Fatalf("expected one outcome per token, got %d", len(outs))
	}
}

func TestFCMTranslate(t *testing.T) {
	// Arrange
	f := NewFCMWithClient(&fakeMessagingClient{}, instrument.NewNoop())

	// Act
	msg := f.translate(entity.PushPayload{
		Title:       "t",
		Body:        "b",
		Icon:        "icon.png",
		ClickAction: "https://apply.careers/jobs/1",
		Category:    entity.CategoryJobAlerts,
		Priority:    entity.PriorityUrgent,
		TTLSeconds:  60,
	}, []string{"tok"})

	// Assert
	if msg.Android.Priority != "high" {
		t.Fatalf("expected urgent mapped to high wire priority, got %q", msg.Android.Priority)
	}
	if msg.Android.TTL == nil || msg.Android.TTL.Seconds() != 60 {
		t.Fatalf("expected 60s TTL, got %v", msg.Android.TTL)
	}
	if msg.Data["category"] != "job_alerts" {
		t.Fatalf("expected category in data, got %v", msg.Data)
	}
	if msg.Webpush.FCMOptions == nil || msg.Webpush.FCMOptions.Link != "https://apply.careers/jobs/1" {
		t.Fatalf("expected click action as webpush link, got %+v", msg.Webpush.FCMOptions)
	}
}
