package email

import (
	"context"
	"time"

	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/mail"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

// Mail wraps the SMTP client with tracing and a bounded retry, so a transient
// relay hiccup does not immediately fail the delivery record.
type Mail struct {
	client     mail.Mail
	ins        instrument.Instrumentation
	maxRetries uint64
	backoff    time.Duration
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{
		client:     client,
		ins:        ins,
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
	}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	backoff := retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := m.client.Send(ctx, msg); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
