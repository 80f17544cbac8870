package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
	"github.com/samber/lo"
)

type (
	DispatchPushInput struct {
		JobID   string
		Targets []PushTarget
		Payload entity.PushPayload
	}
)

// Failure reasons containing one of these markers mean the token is gone for
// good and retrying it will never succeed.
var permanentFailureMarkers = []string{
	"not-found",
	"invalid-registration-token",
	"unregistered",
	"invalid-registration",
}

// errNoDeliveries marks a dispatch that reached devices but delivered to none
// of them for transient reasons. Surfacing it lets the broker redeliver the job.
var errNoDeliveries = errors.New("push dispatch delivered to no device")

func isPermanentFailure(reason string) bool {
	for _, marker := range permanentFailureMarkers {
		if strings.Contains(reason, marker) {
			return true
		}
	}

	return false
}

// DispatchPush delivers one queued job: it fans the payload out to every
// active device of the targeted users, invalidates tokens the providers
// reject permanently, and settles each pending record to sent or failed.
// A target with no active devices settles as sent, there is nothing to retry.
// A dispatch that reached devices but delivered to none of them for transient
// reasons returns an error so the queue redelivers the job.
func (s *Usecase) DispatchPush(ctx context.Context, in DispatchPushInput) ([]entity.DispatchResult, error) {
	ctx, span := s.startSpan(ctx, "DispatchPush")
	defer span.End()

	if len(in.Targets) == 0 {
		return nil, nil
	}

	userIDs := lo.Uniq(lo.Map(in.Targets, func(t PushTarget, _ int) int64 { return t.UserID }))

	devices, err := s.repoDB.ListActiveDevices(ctx, userIDs)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list active devices", "job_id", in.JobID, "error", err)
		return nil, goerror.NewServer(err)
	}

	results := s.sendToProviders(ctx, in.Payload, devices)

	s.invalidateRejectedTokens(ctx, in.JobID, results)

	perUser := lo.GroupBy(results, func(r entity.DispatchResult) int64 { return r.UserID })
	for _, target := range in.Targets {
		s.settleRecord(ctx, target, perUser[target.UserID])
	}

	// A fan-out with at least one delivery is settled for good, and so is one
	// whose every failure is a permanent rejection, those tokens are already
	// invalidated. Anything else may still succeed on redelivery.
	succeeded, transient := 0, false
	for _, r := range results {
		if r.Success {
			succeeded++
		} else if !isPermanentFailure(r.Error) {
			transient = true
		}
	}
	if len(results) > 0 && succeeded == 0 && transient {
		slog.WarnContext(ctx, "push dispatch reached no device, leaving job for redelivery", "job_id", in.JobID)
		return results, goerror.NewServer(errNoDeliveries)
	}

	return results, nil
}

// sendToProviders partitions devices by their platform adapter and invokes
// the adapters concurrently. One result per device, always.
func (s *Usecase) sendToProviders(ctx context.Context, payload entity.PushPayload, devices []entity.DeviceToken) []entity.DispatchResult {
	batches := lo.GroupBy(devices, func(d entity.DeviceToken) PushProvider { return s.providers[d.Platform] })

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]entity.DispatchResult, 0, len(devices))
	)

	for provider, batch := range batches {
		if provider == nil {
			mu.Lock()
			for _, dev := range batch {
				results = append(results, entity.DispatchResult{
					UserID:   dev.UserID,
					Platform: dev.Platform,
					Token:    dev.Token,
					Error:    "no provider configured for platform " + dev.Platform.String(),
				})
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(provider PushProvider, batch []entity.DeviceToken) {
			defer wg.Done()

			tokens := lo.Map(batch, func(d entity.DeviceToken, _ int) string { return d.Token })
			byToken := lo.KeyBy(batch, func(d entity.DeviceToken) string { return d.Token })

			outcomes := provider.Send(ctx, payload, tokens)

			mu.Lock()
			defer mu.Unlock()
			for _, o := range outcomes {
				dev := byToken[o.Token]
				results = append(results, entity.DispatchResult{
					Success:   o.Error == "",
					UserID:    dev.UserID,
					Platform:  dev.Platform,
					Token:     o.Token,
					MessageID: o.MessageID,
					Error:     o.Error,
				})
			}
		}(provider, batch)
	}

	wg.Wait()

	return results
}

// invalidateRejectedTokens flags permanently rejected tokens so later jobs
// stop targeting them. Flagging failures are logged, never propagated, the
// dispatch outcome does not depend on them.
func (s *Usecase) invalidateRejectedTokens(ctx context.Context, jobID string, results []entity.DispatchResult) {
	var tokens []string
	reason := ""
	for _, r := range results {
		if !r.Success && isPermanentFailure(r.Error) {
			tokens = append(tokens, r.Token)
			if reason == "" {
				reason = r.Error
			}
		}
	}
	if len(tokens) == 0 {
		return
	}

	n, err := s.repoDB.MarkDevicesInvalid(ctx, lo.Uniq(tokens), reason)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark devices invalid", "job_id", jobID, "error", err)
		return
	}

	s.metrics.invalidated.Add(n)
}

// settleRecord moves one pending record to its terminal state. At least one
// delivered device counts as sent. A record whose user kept no active devices
// has nothing left to attempt and settles as sent too.
func (s *Usecase) settleRecord(ctx context.Context, target PushTarget, results []entity.DispatchResult) {
	succeeded := 0
	var reasons []string
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			reasons = append(reasons, r.Error)
		}
	}

	s.metrics.success.Add(int64(succeeded))
	s.metrics.failure.Add(int64(len(results) - succeeded))

	if succeeded > 0 || len(results) == 0 {
		if _, err := s.repoDB.MarkNotificationSent(ctx, target.NotificationID); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark notification sent", "notification_id", target.NotificationID, "error", err)
		}
		return
	}

	reason := strings.Join(lo.Uniq(reasons), "; ")
	if len(reason) > 500 {
		reason = reason[:500]
	}

	if _, err := s.repoDB.MarkNotificationFailed(ctx, target.NotificationID, reason); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notification failed", "notification_id", target.NotificationID, "error", err)
	}
}
