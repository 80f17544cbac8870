package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
)

func TestConsumeApplicationStatusFansOut(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	err := env.uc.ConsumeApplicationStatus(context.Background(), ConsumeApplicationStatusInput{
		UserID:        41,
		Email:         "candidate@example.com",
		ApplicationID: 500,
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		OldStatus:     "applied",
		NewStatus:     "interview",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.repo.created) != 3 {
		t.Fatalf("expected in-app, push and email records, got %d", len(env.repo.created))
	}
	channels := map[entity.Channel]bool{}
	for _, rec := range env.repo.created {
		channels[rec.Channel] = true
	}
	if !channels[entity.ChannelInApp] || !channels[entity.ChannelPush] || !channels[entity.ChannelEmail] {
		t.Fatalf("expected one record per channel, got %v", channels)
	}
	if len(env.repo.sent) != 1 {
		t.Fatalf("expected only the in-app record settled immediately, got %v", env.repo.sent)
	}
	if len(env.mq.pushJobs) != 1 || len(env.mq.emailJobs) != 1 {
		t.Fatalf("expected one push and one email job, got %d/%d", len(env.mq.pushJobs), len(env.mq.emailJobs))
	}
	if !strings.Contains(env.mq.emailJobs[0].HTMLBody, "Backend Engineer") {
		t.Fatalf("expected rendered email to mention the job title")
	}
	if env.mq.pushJobs[0].Data["application_id"] != "500" {
		t.Fatalf("expected push data to carry the application id, got %v", env.mq.pushJobs[0].Data)
	}
}

func TestConsumeApplicationStatusHonorsOptOuts(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	p := entity.DefaultPreferences(42)
	p.PushEnabled = false
	p.EmailEnabled = false
	env.repo.prefs[42] = p

	// Act
	err := env.uc.ConsumeApplicationStatus(context.Background(), ConsumeApplicationStatusInput{
		UserID:        42,
		Email:         "candidate@example.com",
		ApplicationID: 501,
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		NewStatus:     "rejected",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected preference declines to be swallowed, got %v", err)
	}
	if len(env.repo.created) != 1 || env.repo.created[0].Channel != entity.ChannelInApp {
		t.Fatalf("expected only the in-app record, got %+v", env.repo.created)
	}
	if len(env.mq.pushJobs) != 0 || len(env.mq.emailJobs) != 0 {
		t.Fatalf("expected no jobs for an opted-out recipient")
	}
}

func TestConsumeApplicationStatusDropsMalformedEvent(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	err := env.uc.ConsumeApplicationStatus(context.Background(), ConsumeApplicationStatusInput{
		UserID: 43,
		// missing email, job title, company, status
	})

	// Assert
	if err != nil {
		t.Fatalf("expected malformed events dropped without error, got %v", err)
	}
	if len(env.repo.created) != 0 {
		t.Fatalf("expected no records for a malformed event, got %d", len(env.repo.created))
	}
}

func TestConsumeApplicationStatusPublishesStreamEvent(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := env.uc.StreamNotifications(ctx, 44)

	// Act
	err := env.uc.ConsumeApplicationStatus(context.Background(), ConsumeApplicationStatusInput{
		UserID:        44,
		Email:         "candidate@example.com",
		ApplicationID: 502,
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		NewStatus:     "offer",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	select {
	case evt := <-events:
		if evt.UserID != 44 || evt.Category != entity.CategoryApplicationStatus {
			t.Fatalf("unexpected stream event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a stream event for the in-app record")
	}
}
