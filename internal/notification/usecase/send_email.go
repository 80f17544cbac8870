package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
	"github.com/oks-citadel/apply-notify/internal/pkg/mail"
	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
)

type (
	SendEmailInput struct {
		TargetUserID int64  `validate:"required,gt=0"`
		Email        string `validate:"required,email"`
		Subject      string `validate:"required,max=300"`
		HTMLBody     string `validate:"required"`
		Category     string `validate:"required,oneof=job_alerts application_status messages promotions"`
	}

	SendEmailOutput struct {
		JobID          string
		NotificationID int64
	}

	EmailDispatchJob struct {
		JobID          string
		NotificationID int64
		UserID         int64
		Email          string
		Subject        string
		HTMLBody       string
		Category       entity.Category
	}

	DeliverEmailInput struct {
		JobID          string
		NotificationID int64
		Email          string
		Subject        string
		HTMLBody       string
	}
)

// SendEmail gates the recipient against their preferences, records a pending
// email notification, and enqueues it for delivery. An opted-out recipient
// produces no record.
func (s *Usecase) SendEmail(ctx context.Context, in SendEmailInput) (*SendEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "SendEmail")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Subject = strings.TrimSpace(in.Subject)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	category := entity.Category(in.Category)

	prefs, err := s.repoDB.GetOrCreatePreferences(ctx, in.TargetUserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get preferences", "user_id", in.TargetUserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !prefs.Allows(entity.ChannelEmail, category) {
		return nil, goerror.NewBusiness("recipient declined by notification preferences", goerror.CodeForbidden)
	}

	out := &SendEmailOutput{
		JobID:          s.uuid.Generate(),
		NotificationID: s.uid.Generate(),
	}

	if err := s.repoDB.CreateNotification(ctx, entity.CreateNotification{
		ID:       out.NotificationID,
		UserID:   in.TargetUserID,
		Channel:  entity.ChannelEmail,
		Priority: entity.PriorityMedium,
		Category: category,
		Title:    in.Subject,
		Body:     in.HTMLBody,
		Data:     valueobject.JSONMap{},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.TargetUserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMQ.PublishEmailDispatch(ctx, EmailDispatchJob{
		JobID:          out.JobID,
		NotificationID: out.NotificationID,
		UserID:         in.TargetUserID,
		Email:          in.Email,
		Subject:        in.Subject,
		HTMLBody:       in.HTMLBody,
		Category:       category,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish email dispatch job", "job_id", out.JobID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

// DeliverEmail sends one queued email and settles its record. A record that
// already left pending is skipped, redelivery of the same job is harmless.
func (s *Usecase) DeliverEmail(ctx context.Context, in DeliverEmailInput) error {
	ctx, span := s.startSpan(ctx, "DeliverEmail")
	defer span.End()

	n, err := s.repoDB.GetNotification(ctx, in.NotificationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "notification_id", in.NotificationID, "error", err)
		return goerror.NewServer(err)
	}

	if n.Status != entity.NotificationStatusPending {
		return nil
	}

	mailErr := s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  in.Subject,
		HTMLBody: in.HTMLBody,
	})
	if mailErr != nil {
		slog.ErrorContext(ctx, "failed to send notification email", "notification_id", in.NotificationID, "error", mailErr)
		if _, err := s.repoDB.MarkNotificationFailed(ctx, in.NotificationID, mailErr.Error()); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark notification failed", "notification_id", in.NotificationID, "error", err)
		}
		return mailErr
	}

	if _, err := s.repoDB.MarkNotificationSent(ctx, in.NotificationID); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notification sent", "notification_id", in.NotificationID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
