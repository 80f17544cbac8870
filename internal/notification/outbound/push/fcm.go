package push

import (
	"context"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// fcmBatchSize is the token limit of one multicast call.
const fcmBatchSize = 500

// MessagingClient is the slice of the Firebase messaging client the adapter
// needs, kept small so tests can fake it.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCM is the batch-capable provider serving android and web tokens.
type FCM struct {
	client MessagingClient
	ins    instrument.Instrumentation
}

// NewFCM builds the adapter from service-account credentials. Empty
// credentials produce a disabled adapter that fails soft per token; the
// condition is warned once here, not on every send.
func NewFCM(ctx context.Context, credentialsJSON []byte, ins instrument.Instrumentation) (*FCM, error) {
	if len(credentialsJSON) == 0 {
		slog.WarnContext(ctx, "fcm credentials not configured, push delivery for android/web is disabled")
		return &FCM{ins: ins}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &FCM{client: client, ins: ins}, nil
}

// NewFCMWithClient wires an existing client, used by tests.
func NewFCMWithClient(client MessagingClient, ins instrument.Instrumentation) *FCM {
	return &FCM{client: client, ins: ins}
}

func (f *FCM) Name() string {
	return "fcm"
}

func (f *FCM) Send(ctx context.Context, payload entity.PushPayload, tokens []string) []entity.ProviderOutcome {
	ctx, span := f.startSpan(ctx, "Send")
	defer span.End()

	if f.client == nil {
		return failAll(tokens, "fcm: "+ReasonNotInitialized)
	}

	outs := make([]entity.ProviderOutcome, 0, len(tokens))
	for start := 0; start < len(tokens); start += fcmBatchSize {
		end := min(start+fcmBatchSize, len(tokens))
		outs = append(outs, f.sendBatch(ctx, payload, tokens[start:end])...)
	}

	return outs
}

func (f *FCM) sendBatch(ctx context.Context, payload entity.PushPayload, tokens []string) []entity.ProviderOutcome {
	resp, err := f.client.SendEachForMulticast(ctx, f.translate(payload, tokens))
	if err != nil {
		slog.ErrorContext(ctx, "fcm multicast call failed", "tokens", len(tokens), "error", err)
		return failAll(tokens, err.Error())
	}

	outs := make([]entity.ProviderOutcome, 0, len(tokens))
	for i, r := range resp.Responses {
		if r.Success {
			outs = append(outs, entity.ProviderOutcome{Token: tokens[i], MessageID: r.MessageID})
			continue
		}
		outs = append(outs, entity.ProviderOutcome{Token: tokens[i], Error: classifyFCMError(r.Error)})
	}

	return outs
}

// translate maps the generic payload onto the FCM schema. Unsupported fields
// (badge on android) are dropped silently.
func (f *FCM) translate(payload entity.PushPayload, tokens []string) *messaging.MulticastMessage {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   payload.Data,
		Notification: &messaging.Notification{
			Title:    payload.Title,
			Body:     payload.Body,
			ImageURL: payload.Image,
		},
		Android: &messaging.AndroidConfig{
			Priority: payload.Priority.Wire(),
			Notification: &messaging.AndroidNotification{
				Icon:        payload.Icon,
				Sound:       payload.Sound,
				ClickAction: payload.ClickAction,
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Icon: payload.Icon,
			},
		},
	}

	if payload.TTLSeconds > 0 {
		ttl := time.Duration(payload.TTLSeconds) * time.Second
		msg.Android.TTL = &ttl
	}
	if payload.ClickAction != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: payload.ClickAction}
	}
	if payload.Category != "" {
		if msg.Data == nil {
			msg.Data = map[string]string{}
		}
		msg.Data["category"] = payload.Category.String()
	}

	return msg
}

func classifyFCMError(err error) string {
	if err == nil {
		return "unknown failure"
	}

	switch {
	case messaging.IsUnregistered(err):
		return ReasonUnregistered + ": " + err.Error()
	case messaging.IsInvalidArgument(err):
		return ReasonInvalidToken + ": " + err.Error()
	default:
		return err.Error()
	}
}

func (f *FCM) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return f.ins.Tracer("notification.outbound.push.fcm").Start(ctx, name)
}
