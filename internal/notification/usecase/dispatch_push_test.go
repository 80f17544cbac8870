package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func TestDispatchPushMixedOutcomes(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(7, "tok-a", entity.PlatformAndroid)
	env.addDevice(7, "tok-b", entity.PlatformWeb)
	env.addDevice(7, "tok-c", entity.PlatformIOS)
	env.apns.fn = func(tokens []string) []entity.ProviderOutcome {
		outs := make([]entity.ProviderOutcome, 0, len(tokens))
		for _, tok := range tokens {
			outs = append(outs, entity.ProviderOutcome{Token: tok, Error: "unregistered: device token no longer valid"})
		}
		return outs
	}

	// Act
	results, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID:   "job-7",
		Targets: []PushTarget{{UserID: 7, NotificationID: 70}},
		Payload: entity.PushPayload{Title: "hello", Body: "world"},
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if len(env.repo.sent) != 1 || env.repo.sent[0] != 70 {
		t.Fatalf("expected record 70 marked sent, got %v", env.repo.sent)
	}
	if len(env.repo.failed) != 0 {
		t.Fatalf("expected no failed records, got %v", env.repo.failed)
	}
	if len(env.repo.invalidated) != 1 || len(env.repo.invalidated[0]) != 1 || env.repo.invalidated[0][0] != "tok-c" {
		t.Fatalf("expected only tok-c invalidated, got %v", env.repo.invalidated)
	}
}

func TestDispatchPushSharedProviderBatchesOnce(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(1, "android-1", entity.PlatformAndroid)
	env.addDevice(1, "web-1", entity.PlatformWeb)
	env.addDevice(2, "ios-1", entity.PlatformIOS)

	// Act
	_, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID: "job-1",
		Targets: []PushTarget{
			{UserID: 1, NotificationID: 10},
			{UserID: 2, NotificationID: 20},
		},
		Payload: entity.PushPayload{Title: "t"},
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.fcm.calls) != 1 {
		t.Fatalf("expected android and web tokens in a single batch, got %d calls", len(env.fcm.calls))
	}
	if len(env.fcm.calls[0]) != 2 {
		t.Fatalf("expected batch of 2 tokens, got %v", env.fcm.calls[0])
	}
	if len(env.apns.calls) != 1 || len(env.apns.calls[0]) != 1 {
		t.Fatalf("expected one ios call with one token, got %v", env.apns.calls)
	}
	if len(env.repo.sent) != 2 {
		t.Fatalf("expected both records marked sent, got %v", env.repo.sent)
	}
}

func TestDispatchPushNoDevicesSettlesSent(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	results, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID:   "job-2",
		Targets: []PushTarget{{UserID: 99, NotificationID: 990}},
		Payload: entity.PushPayload{Title: "t"},
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if len(env.repo.sent) != 1 || env.repo.sent[0] != 990 {
		t.Fatalf("expected record 990 marked sent, got %v", env.repo.sent)
	}
}

func TestDispatchPushAllPermanentFailures(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(3, "dead-1", entity.PlatformAndroid)
	env.addDevice(3, "dead-2", entity.PlatformAndroid)
	env.fcm.fn = func(tokens []string) []entity.ProviderOutcome {
		outs := make([]entity.ProviderOutcome, 0, len(tokens))
		for _, tok := range tokens {
			outs = append(outs, entity.ProviderOutcome{Token: tok, Error: "invalid-registration-token"})
		}
		return outs
	}

	// Act
	_, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID:   "job-3",
		Targets: []PushTarget{{UserID: 3, NotificationID: 30}},
		Payload: entity.PushPayload{Title: "t"},
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.repo.sent) != 0 {
		t.Fatalf("expected no records marked sent, got %v", env.repo.sent)
	}
	reason, ok := env.repo.failed[30]
	if !ok {
		t.Fatalf("expected record 30 marked failed")
	}
	if !strings.Contains(reason, "invalid-registration-token") {
		t.Fatalf("expected failure reason to carry the provider error, got %q", reason)
	}
	if len(env.repo.invalidated) != 1 || len(env.repo.invalidated[0]) != 2 {
		t.Fatalf("expected both tokens invalidated, got %v", env.repo.invalidated)
	}
}

func TestDispatchPushTransientFailureNotInvalidated(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(4, "flaky", entity.PlatformIOS)
	env.apns.fn = func(tokens []string) []entity.ProviderOutcome {
		return []entity.ProviderOutcome{{Token: tokens[0], Error: "apns: service unavailable"}}
	}

	// Act
	_, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID:   "job-4",
		Targets: []PushTarget{{UserID: 4, NotificationID: 40}},
		Payload: entity.PushPayload{Title: "t"},
	})

	// Assert
	if err == nil {
		t.Fatalf("expected an error so the job is redelivered")
	}
	if len(env.repo.invalidated) != 0 {
		t.Fatalf("expected no invalidations for a transient failure, got %v", env.repo.invalidated)
	}
	if _, ok := env.repo.failed[40]; !ok {
		t.Fatalf("expected record 40 marked failed")
	}
}

func TestDispatchPushZeroDeliveriesLeftForRedelivery(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(5, "dead", entity.PlatformAndroid)
	env.addDevice(5, "flaky", entity.PlatformIOS)
	env.fcm.fn = func(tokens []string) []entity.ProviderOutcome {
		return []entity.ProviderOutcome{{Token: tokens[0], Error: "unregistered"}}
	}
	env.apns.fn = func(tokens []string) []entity.ProviderOutcome {
		return []entity.ProviderOutcome{{Token: tokens[0], Error: "apns: service unavailable"}}
	}

	// Act
	results, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{
		JobID:   "job-6",
		Targets: []PushTarget{{UserID: 5, NotificationID: 50}},
		Payload: entity.PushPayload{Title: "t"},
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInternal {
		t.Fatalf("expected internal error for redelivery, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if _, ok := env.repo.failed[50]; !ok {
		t.Fatalf("expected record 50 marked failed")
	}
	if len(env.repo.invalidated) != 1 || env.repo.invalidated[0][0] != "dead" {
		t.Fatalf("expected only the permanently rejected token invalidated, got %v", env.repo.invalidated)
	}
}

func TestDispatchPushEmptyTargets(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	results, err := env.uc.DispatchPush(context.Background(), DispatchPushInput{JobID: "job-5"})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
	if len(env.fcm.calls) != 0 || len(env.apns.calls) != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestIsPermanentFailure(t *testing.T) {
	cases := []struct {
		reason string
		want   bool
	}{
		{"unregistered: device token no longer valid", true},
		{"not-found", true},
		{"invalid-registration-token", true},
		{"apns: service unavailable", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isPermanentFailure(tc.reason); got != tc.want {
			t.Fatalf("isPermanentFailure(%q) = %v, want %v", tc.reason, got, tc.want)
		}
	}
}
