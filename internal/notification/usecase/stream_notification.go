package usecase

import (
	"context"
	"time"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
)

// StreamEvent represents a notification update sent over SSE.
type StreamEvent struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	Channel   string              `json:"channel"`
	Category  entity.Category     `json:"category"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Data      valueobject.JSONMap `json:"data"`
	ActionURL string              `json:"action_url,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type subscriber struct {
	ch chan StreamEvent
}

// StreamNotifications registers a stream for a user and closes it when ctx is done.
func (s *Usecase) StreamNotifications(ctx context.Context, userID int64) <-chan StreamEvent {
	sub := &subscriber{ch: make(chan StreamEvent, 10)}

	s.streamMu.Lock()
	if s.streams[userID] == nil {
		s.streams[userID] = make(map[*subscriber]struct{})
	}
	s.streams[userID][sub] = struct{}{}
	s.streamMu.Unlock()

	go func() {
		<-ctx.Done()
		s.streamMu.Lock()
		if subs := s.streams[userID]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(s.streams, userID)
			}
		}
		// Closing under the lock keeps a concurrent publish, which sends
		// under the read lock, from hitting a closed channel.
		close(sub.ch)
		s.streamMu.Unlock()
	}()

	return sub.ch
}

func (s *Usecase) publishNotification(evt StreamEvent) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	// Channels are buffered and the send never blocks, so holding the read
	// lock across the fan-out is safe. A subscriber still present in the map
	// cannot have been closed yet.
	for sub := range s.streams[evt.UserID] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

func (s *Usecase) buildStreamEvent(n entity.CreateNotification) StreamEvent {
	return StreamEvent{
		ID:        n.ID,
		UserID:    n.UserID,
		Channel:   n.Channel.String(),
		Category:  n.Category,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		ActionURL: n.ActionURL,
		CreatedAt: s.clock.Now(),
	}
}
