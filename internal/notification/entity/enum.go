package entity

import (
	"strings"
)

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelInApp   Channel = 1
	ChannelEmail   Channel = 2
	ChannelSMS     Channel = 3
	ChannelPush    Channel = 4
)

func ChannelFromString(raw string) Channel {
	switch strings.TrimSpace(raw) {
	case "in_app":
		return ChannelInApp
	case "email":
		return ChannelEmail
	case "sms":
		return ChannelSMS
	case "push":
		return ChannelPush
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelInApp:
		return "in_app"
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelPush:
		return "push"
	default:
		return "unknown"
	}
}

type Platform int16

const (
	PlatformUnknown Platform = 0
	PlatformIOS     Platform = 1
	PlatformAndroid Platform = 2
	PlatformWeb     Platform = 3
)

func PlatformFromString(raw string) Platform {
	switch strings.TrimSpace(raw) {
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	case "web":
		return PlatformWeb
	default:
		return PlatformUnknown
	}
}

func (p Platform) String() string {
	switch p {
	case PlatformIOS:
		return "ios"
	case PlatformAndroid:
		return "android"
	case PlatformWeb:
		return "web"
	default:
		return "unknown"
	}
}

type DeviceStatus int16

const (
	DeviceStatusUnknown  DeviceStatus = 0
	DeviceStatusActive   DeviceStatus = 1
	DeviceStatusInactive DeviceStatus = 2
	DeviceStatusInvalid  DeviceStatus = 3
)

func DeviceStatusFromString(raw string) DeviceStatus {
	switch strings.TrimSpace(raw) {
	case "active":
		return DeviceStatusActive
	case "inactive":
		return DeviceStatusInactive
	case "invalid":
		return DeviceStatusInvalid
	default:
		return DeviceStatusUnknown
	}
}

func (s DeviceStatus) String() string {
	switch s {
	case DeviceStatusActive:
		return "active"
	case DeviceStatusInactive:
		return "inactive"
	case DeviceStatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type NotificationStatus int16

const (
	NotificationStatusUnknown NotificationStatus = 0
	NotificationStatusPending NotificationStatus = 1
	NotificationStatusSent    NotificationStatus = 2
	NotificationStatusFailed  NotificationStatus = 3
	NotificationStatusRead    NotificationStatus = 4
)

func NotificationStatusFromString(raw string) NotificationStatus {
	switch strings.TrimSpace(raw) {
	case "pending":
		return NotificationStatusPending
	case "sent":
		return NotificationStatusSent
	case "failed":
		return NotificationStatusFailed
	case "read":
		return NotificationStatusRead
	default:
		return NotificationStatusUnknown
	}
}

func (s NotificationStatus) String() string {
	switch s {
	case NotificationStatusPending:
		return "pending"
	case NotificationStatusSent:
		return "sent"
	case NotificationStatusFailed:
		return "failed"
	case NotificationStatusRead:
		return "read"
	default:
		return "unknown"
	}
}

type Priority int16

const (
	PriorityUnknown Priority = 0
	PriorityLow     Priority = 1
	PriorityMedium  Priority = 2
	PriorityHigh    Priority = 3
	PriorityUrgent  Priority = 4
)

func PriorityFromString(raw string) Priority {
	switch strings.TrimSpace(raw) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityUnknown
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Wire returns the two-level priority understood by push providers.
func (p Priority) Wire() string {
	if p == PriorityHigh || p == PriorityUrgent {
		return "high"
	}
	return "normal"
}

type Category string

const (
	CategoryJobAlerts         Category = "job_alerts"
	CategoryApplicationStatus Category = "application_status"
	CategoryMessages          Category = "messages"
	CategoryPromotions        Category = "promotions"
)

// Categories lists every known category.
func Categories() []Category {
	return []Category{
		CategoryJobAlerts,
		CategoryApplicationStatus,
		CategoryMessages,
		CategoryPromotions,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryJobAlerts, CategoryApplicationStatus, CategoryMessages, CategoryPromotions:
		return true
	default:
		return false
	}
}

// Marketing reports whether the category is promotional and therefore
// opt-in rather than opt-out.
func (c Category) Marketing() bool {
	return c == CategoryPromotions
}

func (c Category) String() string {
	return string(c)
}
