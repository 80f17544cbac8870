package entity

import "time"

// DeviceToken is one registered push destination. A token is unique per
// (token, platform); re-registration by another user reassigns ownership.
type DeviceToken struct {
	ID            int64
	UserID        int64
	Token         string
	Platform      Platform
	Status        DeviceStatus
	Name          string
	Model         string
	OSVersion     string
	AppVersion    string
	Language      string
	Timezone      string
	LastUsedAt    *time.Time
	InvalidAt     *time.Time
	InvalidReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UpsertDevice carries a registration write. Empty metadata fields leave the
// stored value untouched on re-registration.
type UpsertDevice struct {
	ID         int64
	UserID     int64
	Token      string
	Platform   Platform
	Name       string
	Model      string
	OSVersion  string
	AppVersion string
	Language   string
	Timezone   string
}
