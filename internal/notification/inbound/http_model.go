package inbound

import (
	"time"

	"github.com/oks-citadel/apply-notify/internal/pkg/valueobject"
)

type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform"`
	Name        string `json:"name,omitempty"`
	Model       string `json:"model,omitempty"`
	OSVersion   string `json:"os_version,omitempty"`
	AppVersion  string `json:"app_version,omitempty"`
	Language    string `json:"language,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

type RemoveDeviceRequest struct {
	DeviceToken string `json:"device_token"`
}

type DeviceResponse struct {
	ID         int64      `json:"id"`
	Token      string     `json:"token"`
	Platform   string     `json:"platform"`
	Status     string     `json:"status"`
	Name       string     `json:"name,omitempty"`
	Model      string     `json:"model,omitempty"`
	OSVersion  string     `json:"os_version,omitempty"`
	AppVersion string     `json:"app_version,omitempty"`
	Language   string     `json:"language,omitempty"`
	Timezone   string     `json:"timezone,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type DevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}

type PreferencesPayload struct {
	EmailEnabled bool `json:"email_enabled"`
	PushEnabled  bool `json:"push_enabled"`

	EmailJobAlerts         bool `json:"email_job_alerts"`
	EmailApplicationStatus bool `json:"email_application_status"`
	EmailMessages          bool `json:"email_messages"`
	EmailPromotions        bool `json:"email_promotions"`

	PushJobAlerts         bool `json:"push_job_alerts"`
	PushApplicationStatus bool `json:"push_application_status"`
	PushMessages          bool `json:"push_messages"`
	PushPromotions        bool `json:"push_promotions"`
}

type SendPushRequest struct {
	TargetUserIDs []int64           `json:"target_user_ids"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Icon          string            `json:"icon,omitempty"`
	Image         string            `json:"image,omitempty"`
	Badge         int               `json:"badge,omitempty"`
	Sound         string            `json:"sound,omitempty"`
	ClickAction   string            `json:"click_action,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
	Category      string            `json:"category"`
	Priority      string            `json:"priority,omitempty"`
	TTLSeconds    int               `json:"ttl_seconds,omitempty"`
}

type SendPushResponse struct {
	JobID    string  `json:"job_id"`
	Queued   []int64 `json:"queued"`
	Declined []int64 `json:"declined,omitempty"`
}

type SendEmailRequest struct {
	TargetUserID int64  `json:"target_user_id"`
	Email        string `json:"email"`
	Subject      string `json:"subject"`
	HTMLBody     string `json:"html_body"`
	Category     string `json:"category"`
}

type SendEmailResponse struct {
	JobID          string `json:"job_id"`
	NotificationID int64  `json:"notification_id"`
}

type NotificationResponse struct {
	ID        int64               `json:"id"`
	Channel   string              `json:"channel"`
	Status    string              `json:"status"`
	Priority  string              `json:"priority"`
	Category  string              `json:"category"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Data      valueobject.JSONMap `json:"data" swaggertype:"object"`
	ActionURL string              `json:"action_url,omitempty"`
	ReadAt    *time.Time          `json:"read_at,omitempty"`
	SentAt    *time.Time          `json:"sent_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
