package event

const PushDispatchDestination string = "notification_push_dispatch"
const PushDispatchConsumerNotification string = "notification_push_dispatch_worker"

// PushDispatchTarget pairs one admitted user with the pending record created
// for them at intent time.
type PushDispatchTarget struct {
	UserID         int64 `json:"user_id"`
	NotificationID int64 `json:"notification_id"`
}

type PushDispatchMessage struct {
	JobID       string               `json:"job_id"`
	Targets     []PushDispatchTarget `json:"targets"`
	Title       string               `json:"title"`
	Body        string               `json:"body"`
	Icon        string               `json:"icon,omitempty"`
	Image       string               `json:"image,omitempty"`
	Badge       int                  `json:"badge,omitempty"`
	Sound       string               `json:"sound,omitempty"`
	ClickAction string               `json:"click_action,omitempty"`
	Data        map[string]string    `json:"data,omitempty"`
	Category    string               `json:"category"`
	Priority    string               `json:"priority"`
	TTLSeconds  int                  `json:"ttl_seconds,omitempty"`
}
