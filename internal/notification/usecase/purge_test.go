package usecase

import (
	"context"
	"testing"
	"time"
)

func TestPurgeStaleUsesConfiguredWindows(t *testing.T) {
	// Arrange
	env := newTestEnvWithConfig(t, `
modules:
  notification:
    retention:
      device_inactive_days: 30
      notification_max_age_days: 60
`)

	// Act
	err := env.uc.PurgeStale(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	now := time.Now()
	deviceAge := now.Sub(env.repo.deviceCutoff)
	if deviceAge < 29*24*time.Hour || deviceAge > 31*24*time.Hour {
		t.Fatalf("expected ~30 day device cutoff, got %v", deviceAge)
	}
	recordAge := now.Sub(env.repo.recordCutoff)
	if recordAge < 59*24*time.Hour || recordAge > 61*24*time.Hour {
		t.Fatalf("expected ~60 day record cutoff, got %v", recordAge)
	}
}

func TestPurgeStaleFallsBackToDefaults(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	err := env.uc.PurgeStale(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	now := time.Now()
	deviceAge := now.Sub(env.repo.deviceCutoff)
	if deviceAge < 89*24*time.Hour || deviceAge > 91*24*time.Hour {
		t.Fatalf("expected ~90 day default device cutoff, got %v", deviceAge)
	}
	recordAge := now.Sub(env.repo.recordCutoff)
	if recordAge < 179*24*time.Hour || recordAge > 181*24*time.Hour {
		t.Fatalf("expected ~180 day default record cutoff, got %v", recordAge)
	}
}
