package mq

import (
	"context"
	"encoding/json"

	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/messaging"
	"github.com/oks-citadel/apply-notify/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishPushDispatch(ctx context.Context, msg usecase.PushDispatchJob) error {
	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishPushDispatch")
	defer span.End()

	targets := make([]event.PushDispatchTarget, 0, len(msg.Targets))
	for _, t := range msg.Targets {
		targets = append(targets, event.PushDispatchTarget{
			UserID:         t.UserID,
			NotificationID: t.NotificationID,
		})
	}

	body, err := json.Marshal(event.PushDispatchMessage{
		JobID:       msg.JobID,
		Targets:     targets,
		Title:       msg.Title,
		Body:        msg.Body,
		Icon:        msg.Icon,
		Image:       msg.Image,
		Badge:       msg.Badge,
		Sound:       msg.Sound,
		ClickAction: msg.ClickAction,
		Data:        msg.Data,
		Category:    msg.Category.String(),
		Priority:    msg.Priority.String(),
		TTLSeconds:  msg.TTLSeconds,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.PushDispatchDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishEmailDispatch(ctx context.Context, msg usecase.EmailDispatchJob) error {
	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishEmailDispatch")
	defer span.End()

	body, err := json.Marshal(event.EmailDispatchMessage{
		JobID:          msg.JobID,
		NotificationID: msg.NotificationID,
		UserID:         msg.UserID,
		Email:          msg.Email,
		Subject:        msg.Subject,
		HTMLBody:       msg.HTMLBody,
		Category:       msg.Category.String(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.EmailDispatchDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
