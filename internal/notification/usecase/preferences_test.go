package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func TestGetPreferencesMaterializesDefaults(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	prefs, err := env.uc.GetPreferences(authCtx(31))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !prefs.EmailEnabled || !prefs.PushEnabled {
		t.Fatalf("expected master switches on by default, got %+v", prefs)
	}
	if prefs.EmailPromotions || prefs.PushPromotions {
		t.Fatalf("expected promotions off by default, got %+v", prefs)
	}
	if _, ok := env.repo.prefs[31]; !ok {
		t.Fatalf("expected the default matrix persisted on first access")
	}
}

func TestUpdatePreferencesReplacesMatrix(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	prefs, err := env.uc.UpdatePreferences(authCtx(32), UpdatePreferencesInput{
		EmailEnabled:           true,
		PushEnabled:            false,
		EmailJobAlerts:         false,
		EmailApplicationStatus: true,
		EmailMessages:          true,
		EmailPromotions:        true,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if prefs.PushEnabled {
		t.Fatalf("expected push master off after update")
	}
	if !prefs.EmailPromotions {
		t.Fatalf("expected email promotions opt-in to stick")
	}
	stored := env.repo.prefs[32]
	if stored.EmailJobAlerts {
		t.Fatalf("expected stored matrix to match the submitted one, got %+v", stored)
	}
}

func TestPreferencesRequireAuth(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, getErr := env.uc.GetPreferences(context.Background())
	_, updErr := env.uc.UpdatePreferences(context.Background(), UpdatePreferencesInput{})

	// Assert
	for _, err := range []error{getErr, updErr} {
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	}
}
