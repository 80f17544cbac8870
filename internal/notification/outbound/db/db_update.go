package db

import (
	"context"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
)

// DeactivateDevice sets status=inactive for the user's token. Unknown tokens
// are a no-op, not an error.
func (s *DB) DeactivateDevice(ctx context.Context, userID int64, token string) (err error) {
	ctx, span := s.startSpan(ctx, "DeactivateDevice")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE notification_devices SET status = 'inactive', updated_at = now()
		 WHERE user_id = $1 AND token = $2 AND status = 'active'`,
		userID, token,
	)
	return s.mapError(err)
}

// MarkDevicesInvalid bulk-transitions tokens reported permanently failed by a
// provider. Re-marking an already-invalid token is skipped so invalid_at keeps
// the first occurrence.
func (s *DB) MarkDevicesInvalid(ctx context.Context, tokens []string, reason string) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkDevicesInvalid")
	defer func() { s.endSpan(span, err) }()

	if len(tokens) == 0 {
		return 0, nil
	}

	tag, err := s.conn.Exec(ctx,
		`UPDATE notification_devices
		 SET status = 'invalid', invalid_at = now(), invalid_reason = $2, updated_at = now()
		 WHERE token = ANY($1) AND status <> 'invalid'`,
		tokens, reason,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

// MarkNotificationSent transitions pending or failed to sent. Failed is
// reachable because a redelivered job retries records its first attempt could
// not deliver. Read and deleted records are never rewritten.
func (s *DB) MarkNotificationSent(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationSent")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notifications SET status = 'sent', sent_at = now(), updated_at = now()
		 WHERE id = $1 AND status IN ('pending', 'failed')`,
		id,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkNotificationFailed records a failed delivery attempt and bumps
// retry_count once per attempt. A redelivered job may fail an already-failed
// record again, which refreshes the reason and the count.
func (s *DB) MarkNotificationFailed(ctx context.Context, id int64, reason string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationFailed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notifications
		 SET status = 'failed', failed_reason = $2, retry_count = retry_count + 1, updated_at = now()
		 WHERE id = $1 AND status IN ('pending', 'failed')`,
		id, reason,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkNotificationRead is only reachable from sent; failed records stay failed.
func (s *DB) MarkNotificationRead(ctx context.Context, userID, notificationID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notifications SET status = 'read', read_at = now(), updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND status = 'sent' AND deleted_at IS NULL`,
		notificationID, userID,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) MarkNotificationsReadAll(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationsReadAll")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notifications SET status = 'read', read_at = now(), updated_at = now()
		 WHERE user_id = $1 AND status = 'sent' AND deleted_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func (s *DB) SoftDeleteNotification(ctx context.Context, userID, notificationID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "SoftDeleteNotification")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notifications SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		notificationID, userID,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) UpdatePreferences(ctx context.Context, p entity.Preferences) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePreferences")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE notification_preferences SET
			email_enabled = $2, push_enabled = $3,
			email_job_alerts = $4, email_application_status = $5, email_messages = $6, email_promotions = $7,
			push_job_alerts = $8, push_application_status = $9, push_messages = $10, push_promotions = $11,
			updated_at = now()
		 WHERE user_id = $1`,
		p.UserID, p.EmailEnabled, p.PushEnabled,
		p.EmailJobAlerts, p.EmailApplicationStatus, p.EmailMessages, p.EmailPromotions,
		p.PushJobAlerts, p.PushApplicationStatus, p.PushMessages, p.PushPromotions,
	)
	return s.mapError(err)
}
