package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
)

const (
	defaultDeviceInactiveDays     = 90
	defaultNotificationMaxAgeDays = 180
)

// PurgeStale hard-deletes device tokens that sat inactive past the retention
// window and settled notification rows older than the record retention
// window. Pending and sent-but-unread rows are never touched.
func (s *Usecase) PurgeStale(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "PurgeStale")
	defer span.End()

	now := s.clock.Now()

	deviceDays := s.cfg.GetInt("modules.notification.retention.device_inactive_days")
	if deviceDays <= 0 {
		deviceDays = defaultDeviceInactiveDays
	}

	devices, err := s.repoDB.PurgeStaleDevices(ctx, now.AddDate(0, 0, -deviceDays))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo purge stale devices", "error", err)
		return goerror.NewServer(err)
	}

	recordDays := s.cfg.GetInt("modules.notification.retention.notification_max_age_days")
	if recordDays <= 0 {
		recordDays = defaultNotificationMaxAgeDays
	}

	records, err := s.repoDB.PurgeNotifications(ctx, now.AddDate(0, 0, -recordDays))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo purge notifications", "error", err)
		return goerror.NewServer(err)
	}

	if devices > 0 || records > 0 {
		slog.InfoContext(ctx, "retention sweep completed", "devices_purged", devices, "notifications_purged", records)
	}

	return nil
}

// RunRetentionSweep blocks running PurgeStale on the configured interval
// until the context is canceled. Callers start it on a managed goroutine.
func (s *Usecase) RunRetentionSweep(ctx context.Context) {
	interval := time.Duration(s.cfg.GetInt("modules.notification.retention.sweep_interval_minutes")) * time.Minute
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PurgeStale(ctx); err != nil {
				slog.ErrorContext(ctx, "retention sweep failed", "error", err)
			}
		}
	}
}
