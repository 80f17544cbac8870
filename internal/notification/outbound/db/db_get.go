package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
)

const deviceColumns = `id, user_id, token, platform, status,
	name, model, os_version, app_version, language, timezone,
	last_used_at, invalid_at, invalid_reason, created_at, updated_at`

func scanDevice(rows pgx.Rows) (entity.DeviceToken, error) {
	var (
		dev                           entity.DeviceToken
		platform, status              string
		lastUsed, invalidAt, crt, upd pgtype.Timestamptz
	)
	err := rows.Scan(
		&dev.ID, &dev.UserID, &dev.Token, &platform, &status,
		&dev.Name, &dev.Model, &dev.OSVersion, &dev.AppVersion, &dev.Language, &dev.Timezone,
		&lastUsed, &invalidAt, &dev.InvalidReason, &crt, &upd,
	)
	if err != nil {
		return entity.DeviceToken{}, err
	}

	dev.Platform = entity.PlatformFromString(platform)
	dev.Status = entity.DeviceStatusFromString(status)
	dev.LastUsedAt = timePtrFromPgTimestamptz(lastUsed)
	dev.InvalidAt = timePtrFromPgTimestamptz(invalidAt)
	dev.CreatedAt = timeFromPgTimestamptz(crt)
	dev.UpdatedAt = timeFromPgTimestamptz(upd)

	return dev, nil
}

// ListUserDevices returns every device registered to the user, any status.
func (s *DB) ListUserDevices(ctx context.Context, userID int64) (_ []entity.DeviceToken, err error) {
	ctx, span := s.startSpan(ctx, "ListUserDevices")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+deviceColumns+` FROM notification_devices WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.DeviceToken, 0, 4)
	for rows.Next() {
		dev, sErr := scanDevice(rows)
		if sErr != nil {
			return nil, s.mapError(sErr)
		}
		items = append(items, dev)
	}

	return items, s.mapError(rows.Err())
}

// ListActiveDevices resolves fan-out targets for a batch of users in one
// query, avoiding per-user lookups on bulk sends.
func (s *DB) ListActiveDevices(ctx context.Context, userIDs []int64) (_ []entity.DeviceToken, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveDevices")
	defer func() { s.endSpan(span, err) }()

	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx,
		`SELECT `+deviceColumns+` FROM notification_devices WHERE status = 'active' AND user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.DeviceToken, 0, len(userIDs))
	for rows.Next() {
		dev, sErr := scanDevice(rows)
		if sErr != nil {
			return nil, s.mapError(sErr)
		}
		items = append(items, dev)
	}

	return items, s.mapError(rows.Err())
}

const notificationColumns = `id, user_id, channel, status, priority, category,
	title, body, data, action_url,
	read_at, sent_at, failed_reason, retry_count, expires_at, created_at`

func scanNotification(row pgx.Row) (entity.Notification, error) {
	var (
		n                                   entity.Notification
		channel, status, priority, category string
		readAt, sentAt, expiresAt, crt      pgtype.Timestamptz
	)
	err := row.Scan(
		&n.ID, &n.UserID, &channel, &status, &priority, &category,
		&n.Title, &n.Body, &n.Data, &n.ActionURL,
		&readAt, &sentAt, &n.FailedReason, &n.RetryCount, &expiresAt, &crt,
	)
	if err != nil {
		return entity.Notification{}, err
	}

	n.Channel = entity.ChannelFromString(channel)
	n.Status = entity.NotificationStatusFromString(status)
	n.Priority = entity.PriorityFromString(priority)
	n.Category = entity.Category(category)
	n.ReadAt = timePtrFromPgTimestamptz(readAt)
	n.SentAt = timePtrFromPgTimestamptz(sentAt)
	n.ExpiresAt = timePtrFromPgTimestamptz(expiresAt)
	n.CreatedAt = timeFromPgTimestamptz(crt)

	return n, nil
}

func (s *DB) GetNotification(ctx context.Context, id int64) (_ *entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "GetNotification")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	n, err := scanNotification(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &n, nil
}

func (s *DB) ListNotifications(ctx context.Context, userID int64, filter entity.InboxFilter, limit, offset int32) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL`
	switch filter {
	case entity.InboxFilterUnread:
		query += ` AND status = 'sent'`
	case entity.InboxFilterRead:
		query += ` AND status = 'read'`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := s.conn.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.Notification, 0, limit)
	for rows.Next() {
		n, sErr := scanNotification(rows)
		if sErr != nil {
			return nil, s.mapError(sErr)
		}
		items = append(items, n)
	}

	return items, s.mapError(rows.Err())
}

func (s *DB) CountUnreadNotifications(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUnreadNotifications")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = 'sent' AND deleted_at IS NULL`,
		userID,
	).Scan(&count)

	return count, s.mapError(err)
}

const preferenceColumns = `user_id, email_enabled, push_enabled,
	email_job_alerts, email_application_status, email_messages, email_promotions,
	push_job_alerts, push_application_status, push_messages, push_promotions,
	created_at, updated_at`

// GetOrCreatePreferences materializes the default matrix on first access and
// returns whatever row exists afterwards, in a single round trip.
func (s *DB) GetOrCreatePreferences(ctx context.Context, userID int64) (_ *entity.Preferences, err error) {
	ctx, span := s.startSpan(ctx, "GetOrCreatePreferences")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO notification_preferences (
			user_id, email_enabled, push_enabled,
			email_job_alerts, email_application_status, email_messages, email_promotions,
			push_job_alerts, push_application_status, push_messages, push_promotions,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + preferenceColumns

	def := entity.DefaultPreferences(userID)
	row := s.conn.QueryRow(ctx, query,
		def.UserID, def.EmailEnabled, def.PushEnabled,
		def.EmailJobAlerts, def.EmailApplicationStatus, def.EmailMessages, def.EmailPromotions,
		def.PushJobAlerts, def.PushApplicationStatus, def.PushMessages, def.PushPromotions,
	)

	var (
		p        entity.Preferences
		crt, upd pgtype.Timestamptz
	)
	if err = row.Scan(
		&p.UserID, &p.EmailEnabled, &p.PushEnabled,
		&p.EmailJobAlerts, &p.EmailApplicationStatus, &p.EmailMessages, &p.EmailPromotions,
		&p.PushJobAlerts, &p.PushApplicationStatus, &p.PushMessages, &p.PushPromotions,
		&crt, &upd,
	); err != nil {
		return nil, s.mapError(err)
	}

	p.CreatedAt = timeFromPgTimestamptz(crt)
	p.UpdatedAt = timeFromPgTimestamptz(upd)

	return &p, nil
}
