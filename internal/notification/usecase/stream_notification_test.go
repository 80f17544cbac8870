package usecase

import (
	"context"
	"testing"
	"time"
)

func waitStreamClosed(t *testing.T, ch <-chan StreamEvent) {
	t.Helper()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected the stream to close without an event")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the stream to close")
	}
}

func TestStreamNotificationsPublishAfterCancel(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	ch := env.uc.StreamNotifications(ctx, 7)

	// Act
	cancel()
	waitStreamClosed(t, ch)

	// Assert, a publish to a user whose stream closed must be a no-op.
	env.uc.publishNotification(StreamEvent{UserID: 7, Title: "late"})
}

func TestStreamNotificationsCancelOneKeepsSibling(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	defer cancelB()
	chA := env.uc.StreamNotifications(ctxA, 8)
	chB := env.uc.StreamNotifications(ctxB, 8)

	// Act
	cancelA()
	waitStreamClosed(t, chA)
	env.uc.publishNotification(StreamEvent{UserID: 8, Title: "still here"})

	// Assert
	select {
	case evt := <-chB:
		if evt.Title != "still here" {
			t.Fatalf("expected the surviving stream to receive the event, got %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the surviving stream to receive the event")
	}
}
