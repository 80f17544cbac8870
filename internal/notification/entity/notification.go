package entity

import (
	"time"

	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
)

// Notification is one durable delivery attempt record, independent of channel.
type Notification struct {
	ID           int64
	UserID       int64
	Channel      Channel
	Status       NotificationStatus
	Priority     Priority
	Category     Category
	Title        string
	Body         string
	Data         valueobject.JSONMap
	ActionURL    string
	ReadAt       *time.Time
	SentAt       *time.Time
	FailedReason string
	RetryCount   int32
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

type CreateNotification struct {
	ID        int64
	UserID    int64
	Channel   Channel
	Priority  Priority
	Category  Category
	Title     string
	Body      string
	Data      valueobject.JSONMap
	ActionURL string
	ExpiresAt *time.Time
}

// InboxFilter selects which inbox rows a list call returns.
type InboxFilter string

const (
	InboxFilterAll    InboxFilter = "all"
	InboxFilterUnread InboxFilter = "unread"
	InboxFilterRead   InboxFilter = "read"
)
