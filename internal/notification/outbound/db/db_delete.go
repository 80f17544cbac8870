package db

import (
	"context"
	"time"
)

// PurgeStaleDevices hard-deletes inactive devices unused since the cutoff.
// Active rows are never touched; invalid rows are kept for audit.
func (s *DB) PurgeStaleDevices(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "PurgeStaleDevices")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`DELETE FROM notification_devices
		 WHERE status = 'inactive'
		   AND (last_used_at < $1 OR (last_used_at IS NULL AND created_at < $1))`,
		cutoff,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

// PurgeNotifications removes settled records older than the cutoff. Pending
// rows are never purged.
func (s *DB) PurgeNotifications(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "PurgeNotifications")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`DELETE FROM notifications
		 WHERE status IN ('read', 'failed') AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
