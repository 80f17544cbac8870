package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func TestSendEmailQueuesRecord(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	out, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 8,
		Email:        "Applicant@Example.com",
		Subject:      "Interview scheduled",
		HTMLBody:     "<p>Your interview is confirmed.</p>",
		Category:     "application_status",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.repo.created) != 1 {
		t.Fatalf("expected one record created, got %d", len(env.repo.created))
	}
	rec := env.repo.created[0]
	if rec.Channel != entity.ChannelEmail || rec.Title != "Interview scheduled" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(env.mq.emailJobs) != 1 {
		t.Fatalf("expected one job published, got %d", len(env.mq.emailJobs))
	}
	job := env.mq.emailJobs[0]
	if job.Email != "applicant@example.com" {
		t.Fatalf("expected lowercased email, got %q", job.Email)
	}
	if job.NotificationID != out.NotificationID {
		t.Fatalf("expected job to carry the record id")
	}
}

func TestSendEmailDeclinedByPreferences(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	p := entity.DefaultPreferences(9)
	p.EmailEnabled = false
	env.repo.prefs[9] = p

	// Act
	_, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 9,
		Email:        "user@example.com",
		Subject:      "Interview scheduled",
		HTMLBody:     "<p>hi</p>",
		Category:     "application_status",
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("expected forbidden business error, got %v", err)
	}
	if len(env.repo.created) != 0 || len(env.mq.emailJobs) != 0 {
		t.Fatalf("expected no side effects for a declined recipient")
	}
}

func TestSendEmailPromotionsDeclinedByDefault(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 10,
		Email:        "user@example.com",
		Subject:      "Special offer",
		HTMLBody:     "<p>deal</p>",
		Category:     "promotions",
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("expected forbidden business error for default promotions opt-out, got %v", err)
	}
}

func TestDeliverEmailSendsAndSettles(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	out, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 11,
		Email:        "user@example.com",
		Subject:      "Interview scheduled",
		HTMLBody:     "<p>hi</p>",
		Category:     "application_status",
	})
	if err != nil {
		t.Fatalf("failed to queue email: %v", err)
	}
	job := env.mq.emailJobs[0]

	// Act
	err = env.uc.DeliverEmail(context.Background(), DeliverEmailInput{
		JobID:          job.JobID,
		NotificationID: job.NotificationID,
		Email:          job.Email,
		Subject:        job.Subject,
		HTMLBody:       job.HTMLBody,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.mail.messages) != 1 {
		t.Fatalf("expected one email sent, got %d", len(env.mail.messages))
	}
	if env.mail.messages[0].To[0] != "user@example.com" {
		t.Fatalf("unexpected recipient: %v", env.mail.messages[0].To)
	}
	if len(env.repo.sent) != 1 || env.repo.sent[0] != out.NotificationID {
		t.Fatalf("expected record marked sent, got %v", env.repo.sent)
	}
}

func TestDeliverEmailSkipsSettledRecord(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	out, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 12,
		Email:        "user@example.com",
		Subject:      "Interview scheduled",
		HTMLBody:     "<p>hi</p>",
		Category:     "application_status",
	})
	if err != nil {
		t.Fatalf("failed to queue email: %v", err)
	}
	if _, err := env.repo.MarkNotificationSent(context.Background(), out.NotificationID); err != nil {
		t.Fatalf("failed to settle record: %v", err)
	}

	// Act
	err = env.uc.DeliverEmail(context.Background(), DeliverEmailInput{
		NotificationID: out.NotificationID,
		Email:          "user@example.com",
		Subject:        "Interview scheduled",
		HTMLBody:       "<p>hi</p>",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.mail.messages) != 0 {
		t.Fatalf("expected no email for an already settled record, got %d", len(env.mail.messages))
	}
}

func TestDeliverEmailFailureSettlesFailed(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	out, err := env.uc.SendEmail(context.Background(), SendEmailInput{
		TargetUserID: 13,
		Email:        "user@example.com",
		Subject:      "Interview scheduled",
		HTMLBody:     "<p>hi</p>",
		Category:     "application_status",
	})
	if err != nil {
		t.Fatalf("failed to queue email: %v", err)
	}
	env.mail.err = errors.New("smtp: connection refused")

	// Act
	err = env.uc.DeliverEmail(context.Background(), DeliverEmailInput{
		NotificationID: out.NotificationID,
		Email:          "user@example.com",
		Subject:        "Interview scheduled",
		HTMLBody:       "<p>hi</p>",
	})

	// Assert
	if err == nil {
		t.Fatalf("expected delivery error to propagate")
	}
	reason, ok := env.repo.failed[out.NotificationID]
	if !ok {
		t.Fatalf("expected record marked failed")
	}
	if reason != "smtp: connection refused" {
		t.Fatalf("unexpected failure reason: %q", reason)
	}
}
