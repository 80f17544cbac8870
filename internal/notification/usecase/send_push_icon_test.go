package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/oks-citadel/apply-notify/internal/pkg/storage"
)

type fakeStorage struct {
	presignURL string
	presignErr error
	lastBucket string
	lastKey    string
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) PutObject(context.Context, string, string, io.Reader, storage.PutOptions) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, nil
}

func (f *fakeStorage) GetObject(context.Context, string, string, storage.GetOptions) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, nil
}

func (f *fakeStorage) StatObject(context.Context, string, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, nil
}

func (f *fakeStorage) DeleteObject(context.Context, string, string) error { return nil }

func (f *fakeStorage) ListObjects(context.Context, string, string, storage.ListOptions) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	f.lastBucket = bucket
	f.lastKey = key
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return f.presignURL, nil
}

func (f *fakeStorage) PresignPut(context.Context, string, string, storage.PutOptions, time.Duration) (string, error) {
	return "", nil
}

func newIconEnv(t *testing.T, st *fakeStorage) *testEnv {
	t.Helper()
	env := newTestEnvWithConfig(t, `
modules:
  notification:
    icon_bucket: notification-assets
`)
	env.uc.storage = st
	return env
}

func TestResolveIconPresignsBareKey(t *testing.T) {
	// Arrange
	st := &fakeStorage{presignURL: "https://cdn.apply.careers/signed/icon.png"}
	env := newIconEnv(t, st)

	// Act
	got := env.uc.resolveIcon(context.Background(), "icons/offer.png")

	// Assert
	if got != "https://cdn.apply.careers/signed/icon.png" {
		t.Fatalf("expected presigned url, got %q", got)
	}
	if st.lastBucket != "notification-assets" || st.lastKey != "icons/offer.png" {
		t.Fatalf("unexpected presign call: %s/%s", st.lastBucket, st.lastKey)
	}
}

func TestResolveIconPassesThroughFullURL(t *testing.T) {
	// Arrange
	st := &fakeStorage{presignURL: "https://should-not-be-used"}
	env := newIconEnv(t, st)

	// Act
	got := env.uc.resolveIcon(context.Background(), "https://cdn.example.com/icon.png")

	// Assert
	if got != "https://cdn.example.com/icon.png" {
		t.Fatalf("expected url passed through, got %q", got)
	}
	if st.lastKey != "" {
		t.Fatalf("expected no presign call for a full url")
	}
}

func TestResolveIconFallsBackOnSigningFailure(t *testing.T) {
	// Arrange
	st := &fakeStorage{presignErr: errors.New("bucket unreachable")}
	env := newIconEnv(t, st)

	// Act
	got := env.uc.resolveIcon(context.Background(), "icons/offer.png")

	// Assert
	if got != "icons/offer.png" {
		t.Fatalf("expected raw key on signing failure, got %q", got)
	}
}

func TestResolveIconEmptyBucketPassesThrough(t *testing.T) {
	// Arrange
	st := &fakeStorage{presignURL: "https://should-not-be-used"}
	env := newTestEnv(t)
	env.uc.storage = st

	// Act
	got := env.uc.resolveIcon(context.Background(), "icons/offer.png")

	// Assert
	if got != "icons/offer.png" {
		t.Fatalf("expected pass-through without a configured bucket, got %q", got)
	}
}
