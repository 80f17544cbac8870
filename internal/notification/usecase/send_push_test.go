package usecase

import (
	"errors"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func TestSendPushQueuesAdmittedRecipients(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	optedOut := entity.DefaultPreferences(2)
	optedOut.PushEnabled = false
	env.repo.prefs[2] = optedOut

	// Act
	out, err := env.uc.SendPush(authCtx(1), SendPushInput{
		TargetUserIDs: []int64{1, 2},
		Title:         "New job match",
		Body:          "A role matching your profile was just posted.",
		Category:      "job_alerts",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out.Queued) != 1 || out.Queued[0] != 1 {
		t.Fatalf("expected user 1 queued, got %v", out.Queued)
	}
	if len(out.Declined) != 1 || out.Declined[0] != 2 {
		t.Fatalf("expected user 2 declined, got %v", out.Declined)
	}
	if len(env.repo.created) != 1 {
		t.Fatalf("expected one record created, got %d", len(env.repo.created))
	}
	if env.repo.created[0].Channel != entity.ChannelPush {
		t.Fatalf("expected push channel, got %v", env.repo.created[0].Channel)
	}
	if len(env.mq.pushJobs) != 1 {
		t.Fatalf("expected one job published, got %d", len(env.mq.pushJobs))
	}
	job := env.mq.pushJobs[0]
	if len(job.Targets) != 1 || job.Targets[0].UserID != 1 {
		t.Fatalf("expected one target for user 1, got %v", job.Targets)
	}
	if job.Targets[0].NotificationID != out.NotifyIDs[1] {
		t.Fatalf("expected job target to carry the created record id")
	}
}

func TestSendPushAllDeclined(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	optedOut := entity.DefaultPreferences(5)
	optedOut.PushJobAlerts = false
	env.repo.prefs[5] = optedOut

	// Act
	_, err := env.uc.SendPush(authCtx(1), SendPushInput{
		TargetUserIDs: []int64{5},
		Title:         "New job match",
		Body:          "A role matching your profile was just posted.",
		Category:      "job_alerts",
	})

	// Assert
	if err == nil {
		t.Fatalf("expected an error when every recipient declines")
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
		t.Fatalf("expected forbidden business error, got %v", err)
	}
	if len(env.repo.created) != 0 {
		t.Fatalf("expected no records created, got %d", len(env.repo.created))
	}
	if len(env.mq.pushJobs) != 0 {
		t.Fatalf("expected no job published, got %d", len(env.mq.pushJobs))
	}
}

func TestSendPushDedupesTargets(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	out, err := env.uc.SendPush(authCtx(1), SendPushInput{
		TargetUserIDs: []int64{3, 3, 3},
		Title:         "Message received",
		Body:          "You have a new message.",
		Category:      "messages",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out.Queued) != 1 {
		t.Fatalf("expected one queued recipient, got %v", out.Queued)
	}
	if len(env.repo.created) != 1 {
		t.Fatalf("expected one record created, got %d", len(env.repo.created))
	}
}

func TestSendPushDefaultsPriority(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, err := env.uc.SendPush(authCtx(1), SendPushInput{
		TargetUserIDs: []int64{4},
		Title:         "Heads up",
		Body:          "Something happened.",
		Category:      "messages",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.mq.pushJobs[0].Priority != entity.PriorityMedium {
		t.Fatalf("expected medium priority default, got %v", env.mq.pushJobs[0].Priority)
	}
}

func TestSendPushRejectsInvalidInput(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	cases := []struct {
		name string
		in   SendPushInput
	}{
		{"no targets", SendPushInput{Title: "t", Body: "b", Category: "messages"}},
		{"missing title", SendPushInput{TargetUserIDs: []int64{1}, Body: "b", Category: "messages"}},
		{"unknown category", SendPushInput{TargetUserIDs: []int64{1}, Title: "t", Body: "b", Category: "news"}},
		{"negative target", SendPushInput{TargetUserIDs: []int64{-1}, Title: "t", Body: "b", Category: "messages"}},
	}

	for _, tc := range cases {
		// Act
		_, err := env.uc.SendPush(authCtx(1), tc.in)

		// Assert
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if len(env.repo.created) != 0 || len(env.mq.pushJobs) != 0 {
			t.Fatalf("%s: expected no side effects", tc.name)
		}
	}
}
