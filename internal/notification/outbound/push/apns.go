package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
	"go.opentelemetry.io/otel/trace"
)

// APNSClient is the slice of the apns2 client the adapter needs.
type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSConfig carries token-based auth material for APNs.
type APNSConfig struct {
	AuthKey    []byte
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNS is the per-token provider serving ios devices.
type APNS struct {
	client APNSClient
	topic  string
	ins    instrument.Instrumentation
}

// NewAPNS builds the adapter. A missing auth key produces a disabled adapter
// that fails soft per token; the condition is warned once here.
func NewAPNS(ctx context.Context, cfg APNSConfig, ins instrument.Instrumentation) (*APNS, error) {
	if len(cfg.AuthKey) == 0 {
		slog.WarnContext(ctx, "apns auth key not configured, push delivery for ios is disabled")
		return &APNS{topic: cfg.Topic, ins: ins}, nil
	}

	authKey, err := token.AuthKeyFromBytes(cfg.AuthKey)
	if err != nil {
		return nil, err
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNS{client: client, topic: cfg.Topic, ins: ins}, nil
}

// NewAPNSWithClient wires an existing client, used by tests.
func NewAPNSWithClient(client APNSClient, topic string, ins instrument.Instrumentation) *APNS {
	return &APNS{client: client, topic: topic, ins: ins}
}

func (a *APNS) Name() string {
	return "apns"
}

// Send issues one round trip per token. A failing token never aborts delivery
// to the rest of the batch.
func (a *APNS) Send(ctx context.Context, pl entity.PushPayload, tokens []string) []entity.ProviderOutcome {
	ctx, span := a.startSpan(ctx, "Send")
	defer span.End()

	if a.client == nil {
		return failAll(tokens, "apns: "+ReasonNotInitialized)
	}

	outs := make([]entity.ProviderOutcome, 0, len(tokens))
	for _, t := range tokens {
		outs = append(outs, a.sendOne(ctx, pl, t))
	}

	return outs
}

func (a *APNS) sendOne(ctx context.Context, pl entity.PushPayload, deviceToken string) entity.ProviderOutcome {
	resp, err := a.client.PushWithContext(ctx, a.translate(pl, deviceToken))
	if err != nil {
		slog.ErrorContext(ctx, "apns push call failed", "error", err)
		return entity.ProviderOutcome{Token: deviceToken, Error: err.Error()}
	}

	if resp.Sent() {
		return entity.ProviderOutcome{Token: deviceToken, MessageID: resp.ApnsID}
	}

	return entity.ProviderOutcome{Token: deviceToken, Error: classifyAPNSReason(resp.Reason)}
}

// translate maps the generic payload onto the APNs schema. Unsupported fields
// (icon, image, click action) are dropped silently.
func (a *APNS) translate(pl entity.PushPayload, deviceToken string) *apns2.Notification {
	p := payload.NewPayload().
		AlertTitle(pl.Title).
		AlertBody(pl.Body)

	if pl.Badge > 0 {
		p = p.Badge(pl.Badge)
	}
	if pl.Sound != "" {
		p = p.Sound(pl.Sound)
	}
	if pl.Category != "" {
		p = p.Category(pl.Category.String())
	}
	for k, v := range pl.Data {
		p = p.Custom(k, v)
	}

	n := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       a.topic,
		Payload:     p,
		Priority:    apns2.PriorityLow,
	}
	if pl.Priority.Wire() == "high" {
		n.Priority = apns2.PriorityHigh
	}
	if pl.TTLSeconds > 0 {
		n.Expiration = time.Now().Add(time.Duration(pl.TTLSeconds) * time.Second)
	}

	return n
}

func classifyAPNSReason(reason string) string {
	switch reason {
	case apns2.ReasonUnregistered, apns2.ReasonBadDeviceToken, apns2.ReasonDeviceTokenNotForTopic:
		return ReasonUnregistered + ": " + reason
	case "":
		return "unknown failure"
	default:
		return reason
	}
}

func (a *APNS) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return a.ins.Tracer("notification.outbound.push.apns").Start(ctx, name)
}
