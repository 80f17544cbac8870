package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
)

type (
	ConsumeApplicationStatusInput struct {
		UserID        int64  `validate:"required,gt=0"`
		Email         string `validate:"required,email"`
		ApplicationID int64  `validate:"required,gt=0"`
		JobTitle      string `validate:"required,max=200"`
		CompanyName   string `validate:"required,max=200"`
		OldStatus     string `validate:"omitempty,max=50"`
		NewStatus     string `validate:"required,max=50"`
	}
)

const applicationStatusEmailTemplate = `<html><body>
<p>Hi,</p>
<p>Your application for <strong>{{.job_title}}</strong> at <strong>{{.company_name}}</strong> moved to <strong>{{.new_status}}</strong>.</p>
<p>Open the app to see the details.</p>
<p>{{.company_name_footer}} &middot; {{.year}} &middot; <a href="mailto:{{.support_email}}">{{.support_email}}</a></p>
</body></html>`

// ConsumeApplicationStatus reacts to an application moving between stages:
// it always drops an in-app record into the inbox and live stream, then asks
// for push and email delivery, each individually subject to the recipient's
// preferences. Malformed events are dropped, not retried.
func (s *Usecase) ConsumeApplicationStatus(ctx context.Context, in ConsumeApplicationStatusInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeApplicationStatus")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid application status event", "error", err)
		return nil
	}

	title := "Application update: " + in.JobTitle
	body := "Your application at " + in.CompanyName + " moved to " + in.NewStatus + "."

	s.createInboxRecord(ctx, in, title, body)

	if _, err := s.SendPush(ctx, SendPushInput{
		TargetUserIDs: []int64{in.UserID},
		Title:         title,
		Body:          body,
		Category:      string(entity.CategoryApplicationStatus),
		Priority:      entity.PriorityHigh.String(),
		Data: map[string]string{
			"application_id": strconv.FormatInt(in.ApplicationID, 10),
			"new_status":     in.NewStatus,
		},
	}); err != nil && !isPreferenceDecline(err) {
		return err
	}

	data := s.baseEmailTemplateData()
	data["job_title"] = in.JobTitle
	data["company_name"] = in.CompanyName
	data["new_status"] = in.NewStatus
	data["company_name_footer"] = data["company_name"]

	htmlBody, err := s.renderTemplate("application_status", applicationStatusEmailTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render application status email", "user_id", in.UserID, "error", err)
		return nil
	}

	if _, err := s.SendEmail(ctx, SendEmailInput{
		TargetUserID: in.UserID,
		Email:        in.Email,
		Subject:      title,
		HTMLBody:     htmlBody,
		Category:     string(entity.CategoryApplicationStatus),
	}); err != nil && !isPreferenceDecline(err) {
		return err
	}

	return nil
}

func (s *Usecase) createInboxRecord(ctx context.Context, in ConsumeApplicationStatusInput, title, body string) {
	n := entity.CreateNotification{
		ID:       s.uid.Generate(),
		UserID:   in.UserID,
		Channel:  entity.ChannelInApp,
		Priority: entity.PriorityHigh,
		Category: entity.CategoryApplicationStatus,
		Title:    title,
		Body:     body,
		Data: valueobject.JSONMap{
			"application_id": in.ApplicationID,
			"job_title":      in.JobTitle,
			"company_name":   in.CompanyName,
			"old_status":     in.OldStatus,
			"new_status":     in.NewStatus,
		},
	}
	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.UserID, "error", err)
		return
	}

	// In-app delivery completes the moment the row exists.
	if _, err := s.repoDB.MarkNotificationSent(ctx, n.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notification sent", "notification_id", n.ID, "error", err)
	}

	s.publishNotification(s.buildStreamEvent(n))
}

func isPreferenceDecline(err error) bool {
	var ge *goerror.Error
	return errors.As(err, &ge) && ge.Code() == goerror.CodeForbidden
}
