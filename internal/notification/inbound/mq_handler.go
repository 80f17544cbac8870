package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
	"github.com/oks-citadel/apply-notify/internal/pkg/idempotency"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/messaging"
	"github.com/oks-citadel/apply-notify/internal/pkg/uid"
	"github.com/oks-citadel/apply-notify/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc    ucConsumer
	uuid  uid.StringID
	idemp idempotency.Idempotency
	ins   instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) PushDispatchNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PushDispatchNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: push dispatch notification", "msg_body", string(body))

	var payload event.PushDispatchMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of push dispatch notification", "msg_body", string(body), "error", err)
		return nil
	}

	// Redelivery of an already-processed job must not send duplicates.
	if err := h.idemp.Exec(ctx, "notification:push_dispatch:"+payload.JobID, func(ctx context.Context) error {
		targets := make([]usecase.PushTarget, 0, len(payload.Targets))
		for _, t := range payload.Targets {
			targets = append(targets, usecase.PushTarget{
				UserID:         t.UserID,
				NotificationID: t.NotificationID,
			})
		}

		_, err := h.uc.DispatchPush(ctx, usecase.DispatchPushInput{
			JobID:   payload.JobID,
			Targets: targets,
			Payload: entity.PushPayload{
				Title:       payload.Title,
				Body:        payload.Body,
				Icon:        payload.Icon,
				Image:       payload.Image,
				Badge:       payload.Badge,
				Sound:       payload.Sound,
				ClickAction: payload.ClickAction,
				Data:        payload.Data,
				Category:    entity.Category(payload.Category),
				Priority:    entity.PriorityFromString(payload.Priority),
				TTLSeconds:  payload.TTLSeconds,
			},
		})
		return err
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume push dispatch", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) EmailDispatchNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "EmailDispatchNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: email dispatch notification", "msg_body", string(body))

	var payload event.EmailDispatchMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of email dispatch notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.idemp.Exec(ctx, "notification:email_dispatch:"+payload.JobID, func(ctx context.Context) error {
		return h.uc.DeliverEmail(ctx, usecase.DeliverEmailInput{
			JobID:          payload.JobID,
			NotificationID: payload.NotificationID,
			Email:          payload.Email,
			Subject:        payload.Subject,
			HTMLBody:       payload.HTMLBody,
		})
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume email dispatch", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) ApplicationStatusNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "ApplicationStatusNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: application status notification", "msg_body", string(body))

	var payload event.ApplicationStatusMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of application status notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeApplicationStatus(ctx, usecase.ConsumeApplicationStatusInput{
		UserID:        payload.UserID,
		Email:         payload.Email,
		ApplicationID: payload.ApplicationID,
		JobTitle:      payload.JobTitle,
		CompanyName:   payload.CompanyName,
		OldStatus:     payload.OldStatus,
		NewStatus:     payload.NewStatus,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume application status", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
