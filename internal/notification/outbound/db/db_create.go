package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/oks-citadel/apply-notify/internal/notification/entity"
)

// UpsertDevice registers a device token. A token already registered under the
// same platform is reassigned to the calling user and reactivated, merging any
// non-empty metadata fields over the stored values. The ON CONFLICT arbiter
// keeps the (token, platform) uniqueness safe under concurrent writers.
func (s *DB) UpsertDevice(ctx context.Context, in entity.UpsertDevice) (_ *entity.DeviceToken, err error) {
	ctx, span := s.startSpan(ctx, "UpsertDevice")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO notification_devices (
			id, user_id, token, platform, status,
			name, model, os_version, app_version, language, timezone,
			last_used_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 'active', $5, $6, $7, $8, $9, $10, now(), now(), now())
		ON CONFLICT (token, platform) DO UPDATE SET
			user_id        = EXCLUDED.user_id,
			status         = 'active',
			name           = COALESCE(NULLIF(EXCLUDED.name, ''), notification_devices.name),
			model          = COALESCE(NULLIF(EXCLUDED.model, ''), notification_devices.model),
			os_version     = COALESCE(NULLIF(EXCLUDED.os_version, ''), notification_devices.os_version),
			app_version    = COALESCE(NULLIF(EXCLUDED.app_version, ''), notification_devices.app_version),
			language       = COALESCE(NULLIF(EXCLUDED.language, ''), notification_devices.language),
			timezone       = COALESCE(NULLIF(EXCLUDED.timezone, ''), notification_devices.timezone),
			invalid_at     = NULL,
			invalid_reason = '',
			last_used_at   = now(),
			updated_at     = now()
		RETURNING id, user_id, token, platform, status,
			name, model, os_version, app_version, language, timezone,
			last_used_at, invalid_at, invalid_reason, created_at, updated_at`

	row := s.conn.QueryRow(ctx, query,
		in.ID, in.UserID, in.Token, in.Platform.String(),
		in.Name, in.Model, in.OSVersion, in.AppVersion, in.Language, in.Timezone,
	)

	var (
		dev                           entity.DeviceToken
		platform, status              string
		lastUsed, invalidAt, crt, upd pgtype.Timestamptz
	)
	if err = row.Scan(
		&dev.ID, &dev.UserID, &dev.Token, &platform, &status,
		&dev.Name, &dev.Model, &dev.OSVersion, &dev.AppVersion, &dev.Language, &dev.Timezone,
		&lastUsed, &invalidAt, &dev.InvalidReason, &crt, &upd,
	); err != nil {
		return nil, s.mapError(err)
	}

	dev.Platform = entity.PlatformFromString(platform)
	dev.Status = entity.DeviceStatusFromString(status)
	dev.LastUsedAt = timePtrFromPgTimestamptz(lastUsed)
	dev.InvalidAt = timePtrFromPgTimestamptz(invalidAt)
	dev.CreatedAt = timeFromPgTimestamptz(crt)
	dev.UpdatedAt = timeFromPgTimestamptz(upd)

	return &dev, nil
}

func (s *DB) CreateNotification(ctx context.Context, data entity.CreateNotification) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO notifications (
			id, user_id, channel, status, priority, category,
			title, body, data, action_url, expires_at, retry_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8, $9, $10, 0, now(), now())`

	var expiresAt pgtype.Timestamptz
	if data.ExpiresAt != nil {
		expiresAt = pgtype.Timestamptz{Time: *data.ExpiresAt, Valid: true}
	}

	_, err = s.conn.Exec(ctx, query,
		data.ID, data.UserID, data.Channel.String(), data.Priority.String(), data.Category.String(),
		data.Title, data.Body, data.Data, data.ActionURL, expiresAt,
	)
	return s.mapError(err)
}
