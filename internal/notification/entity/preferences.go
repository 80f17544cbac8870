package entity

import "time"

// Preferences is the per-user opt-in matrix: a master switch per channel plus
// one boolean per (channel, category) pair. The master short-circuits every
// category under it.
type Preferences struct {
	UserID       int64
	EmailEnabled bool
	PushEnabled  bool

	EmailJobAlerts         bool
	EmailApplicationStatus bool
	EmailMessages          bool
	EmailPromotions        bool

	PushJobAlerts         bool
	PushApplicationStatus bool
	PushMessages          bool
	PushPromotions        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPreferences returns the matrix materialized on first access:
// everything on except marketing categories.
func DefaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:                 userID,
		EmailEnabled:           true,
		PushEnabled:            true,
		EmailJobAlerts:         true,
		EmailApplicationStatus: true,
		EmailMessages:          true,
		EmailPromotions:        false,
		PushJobAlerts:          true,
		PushApplicationStatus:  true,
		PushMessages:           true,
		PushPromotions:         false,
	}
}

// Allows evaluates master AND category for the channel. Channels without a
// preference surface (in_app) are always allowed.
func (p Preferences) Allows(ch Channel, cat Category) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled && p.emailCategory(cat)
	case ChannelPush:
		return p.PushEnabled && p.pushCategory(cat)
	case ChannelInApp:
		return true
	default:
		return false
	}
}

func (p Preferences) emailCategory(cat Category) bool {
	switch cat {
	case CategoryJobAlerts:
		return p.EmailJobAlerts
	case CategoryApplicationStatus:
		return p.EmailApplicationStatus
	case CategoryMessages:
		return p.EmailMessages
	case CategoryPromotions:
		return p.EmailPromotions
	default:
		return false
	}
}

func (p Preferences) pushCategory(cat Category) bool {
	switch cat {
	case CategoryJobAlerts:
		return p.PushJobAlerts
	case CategoryApplicationStatus:
		return p.PushApplicationStatus
	case CategoryMessages:
		return p.PushMessages
	case CategoryPromotions:
		return p.PushPromotions
	default:
		return false
	}
}
