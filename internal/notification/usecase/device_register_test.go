package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

func TestDeviceRegister(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	dev, err := env.uc.DeviceRegister(authCtx(21), DeviceRegisterInput{
		DeviceToken: "  fcm-token-21  ",
		Platform:    "Android",
		Model:       "Pixel 8",
		Language:    "en",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dev.UserID != 21 {
		t.Fatalf("expected device owned by caller, got user %d", dev.UserID)
	}
	if dev.Token != "fcm-token-21" {
		t.Fatalf("expected trimmed token, got %q", dev.Token)
	}
	if dev.Platform != entity.PlatformAndroid {
		t.Fatalf("expected android platform, got %v", dev.Platform)
	}
	if dev.Status != entity.DeviceStatusActive {
		t.Fatalf("expected active device, got %v", dev.Status)
	}
}

func TestDeviceRegisterRequiresAuth(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, err := env.uc.DeviceRegister(context.Background(), DeviceRegisterInput{
		DeviceToken: "tok",
		Platform:    "ios",
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestDeviceRegisterRejectsUnknownPlatform(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	_, err := env.uc.DeviceRegister(authCtx(21), DeviceRegisterInput{
		DeviceToken: "tok",
		Platform:    "windows",
	})

	// Assert
	if err == nil {
		t.Fatalf("expected validation error for unknown platform")
	}
}

func TestDeviceRemove(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	err := env.uc.DeviceRemove(authCtx(21), DeviceRemoveInput{DeviceToken: "never-registered"})

	// Assert
	if err != nil {
		t.Fatalf("expected removing an unknown token to be a no-op, got %v", err)
	}
}

func TestListDevices(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.addDevice(22, "tok-a", entity.PlatformIOS)
	env.addDevice(22, "tok-b", entity.PlatformWeb)
	env.addDevice(23, "tok-c", entity.PlatformAndroid)

	// Act
	devices, err := env.uc.ListDevices(authCtx(22))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected only the caller's devices, got %d", len(devices))
	}
}
