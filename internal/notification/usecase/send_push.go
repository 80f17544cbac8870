package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
	"github.com/samber/lo"
)

type (
	SendPushInput struct {
		TargetUserIDs []int64 `validate:"required,min=1,dive,gt=0"`
		Title         string  `validate:"required,max=200"`
		Body          string  `validate:"required,max=1000"`
		Icon          string  `validate:"omitempty,max=500"`
		Image         string  `validate:"omitempty,max=500"`
		Badge         int     `validate:"omitempty,gte=0"`
		Sound         string  `validate:"omitempty,max=100"`
		ClickAction   string  `validate:"omitempty,max=500"`
		Data          map[string]string
		Category      string `validate:"required,oneof=job_alerts application_status messages promotions"`
		Priority      string `validate:"omitempty,oneof=low medium high urgent"`
		TTLSeconds    int    `validate:"omitempty,gte=0,lte=2419200"`
	}

	SendPushOutput struct {
		JobID     string
		Queued    []int64
		Declined  []int64
		NotifyIDs map[int64]int64
	}

	// PushTarget pairs an admitted recipient with the pending record created
	// for them before the job is enqueued.
	PushTarget struct {
		UserID         int64
		NotificationID int64
	}

	PushDispatchJob struct {
		JobID       string
		Targets     []PushTarget
		Title       string
		Body        string
		Icon        string
		Image       string
		Badge       int
		Sound       string
		ClickAction string
		Data        map[string]string
		Category    entity.Category
		Priority    entity.Priority
		TTLSeconds  int
	}
)

// SendPush gates the recipients against their preferences, writes one pending
// record per admitted recipient, and enqueues a single dispatch job covering
// all of them. Recipients who opted out get no record at all.
func (s *Usecase) SendPush(ctx context.Context, in SendPushInput) (*SendPushOutput, error) {
	ctx, span := s.startSpan(ctx, "SendPush")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	category := entity.Category(in.Category)
	priority := entity.PriorityFromString(in.Priority)
	if priority == entity.PriorityUnknown {
		priority = entity.PriorityMedium
	}

	out := &SendPushOutput{
		JobID:     s.uuid.Generate(),
		NotifyIDs: make(map[int64]int64),
	}

	for _, userID := range lo.Uniq(in.TargetUserIDs) {
		prefs, err := s.repoDB.GetOrCreatePreferences(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get preferences", "user_id", userID, "error", err)
			return nil, goerror.NewServer(err)
		}

		if !prefs.Allows(entity.ChannelPush, category) {
			out.Declined = append(out.Declined, userID)
			continue
		}

		out.Queued = append(out.Queued, userID)
	}

	if len(out.Queued) == 0 {
		return nil, goerror.NewBusiness("all recipients declined by notification preferences", goerror.CodeForbidden)
	}

	icon := s.resolveIcon(ctx, in.Icon)

	targets := make([]PushTarget, 0, len(out.Queued))
	for _, userID := range out.Queued {
		id := s.uid.Generate()
		data := valueobject.JSONMap{}
		for k, v := range in.Data {
			data.Set(k, v)
		}

		if err := s.repoDB.CreateNotification(ctx, entity.CreateNotification{
			ID:        id,
			UserID:    userID,
			Channel:   entity.ChannelPush,
			Priority:  priority,
			Category:  category,
			Title:     in.Title,
			Body:      in.Body,
			Data:      data,
			ActionURL: in.ClickAction,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo create notification", "user_id", userID, "error", err)
			return nil, goerror.NewServer(err)
		}

		out.NotifyIDs[userID] = id
		targets = append(targets, PushTarget{UserID: userID, NotificationID: id})
	}

	if err := s.repoMQ.PublishPushDispatch(ctx, PushDispatchJob{
		JobID:       out.JobID,
		Targets:     targets,
		Title:       in.Title,
		Body:        in.Body,
		Icon:        icon,
		Image:       in.Image,
		Badge:       in.Badge,
		Sound:       in.Sound,
		ClickAction: in.ClickAction,
		Data:        in.Data,
		Category:    category,
		Priority:    priority,
		TTLSeconds:  in.TTLSeconds,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish push dispatch job", "job_id", out.JobID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

// resolveIcon turns a bare object key into a presigned URL. Full URLs pass
// through untouched, as does the key itself when signing fails.
func (s *Usecase) resolveIcon(ctx context.Context, icon string) string {
	icon = strings.TrimSpace(icon)
	if icon == "" || strings.Contains(icon, "://") {
		return icon
	}

	bucket := strings.TrimSpace(s.cfg.GetString("modules.notification.icon_bucket"))
	if bucket == "" {
		return icon
	}

	url, err := s.storage.PresignGet(ctx, bucket, icon, 24*time.Hour)
	if err != nil {
		slog.WarnContext(ctx, "failed to presign notification icon", "key", icon, "error", err)
		return icon
	}

	return url
}
