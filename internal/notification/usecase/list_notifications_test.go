package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func seedSentRecord(t *testing.T, env *testEnv, id, userID int64) {
	t.Helper()
	ctx := context.Background()
	if err := env.repo.CreateNotification(ctx, entity.CreateNotification{
		ID:       id,
		UserID:   userID,
		Channel:  entity.ChannelInApp,
		Category: entity.CategoryMessages,
		Title:    "seed",
		Body:     "seed",
	}); err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
	if _, err := env.repo.MarkNotificationSent(ctx, id); err != nil {
		t.Fatalf("failed to settle seed record: %v", err)
	}
}

func TestListInboxDefaults(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedSentRecord(t, env, 100, 51)

	// Act
	items, err := env.uc.ListInbox(authCtx(51), ListInboxInput{})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one inbox row, got %d", len(items))
	}
	if env.repo.lastListFilter != entity.InboxFilterAll {
		t.Fatalf("expected all filter by default, got %q", env.repo.lastListFilter)
	}
	if env.repo.lastListLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", env.repo.lastListLimit)
	}
}

func TestListInboxRejectsBadFilter(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, err := env.uc.ListInbox(authCtx(51), ListInboxInput{Status: "archived"})

	// Assert
	if err == nil {
		t.Fatalf("expected validation error for unknown filter")
	}
}

func TestMarkInboxReadFlow(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedSentRecord(t, env, 101, 52)

	// Act
	err := env.uc.MarkInboxRead(authCtx(52), MarkInboxReadInput{ID: 101})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	count, err := env.uc.UnreadCount(authCtx(52))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero unread after marking read, got %d", count)
	}
}

func TestMarkInboxReadNotFound(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedSentRecord(t, env, 102, 53)

	// Act: another user's record looks like a missing one.
	err := env.uc.MarkInboxRead(authCtx(54), MarkInboxReadInput{ID: 102})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("expected not-found business error, got %v", err)
	}
}

func TestMarkAllInboxRead(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedSentRecord(t, env, 103, 55)
	seedSentRecord(t, env, 104, 55)

	// Act
	err := env.uc.MarkAllInboxRead(authCtx(55))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	count, err := env.uc.UnreadCount(authCtx(55))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero unread, got %d", count)
	}
}

func TestDeleteInbox(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	seedSentRecord(t, env, 105, 56)

	// Act
	err := env.uc.DeleteInbox(authCtx(56), DeleteInboxInput{ID: 105})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	err = env.uc.DeleteInbox(authCtx(56), DeleteInboxInput{ID: 105})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}
