package entity

// PushPayload is the provider-agnostic push message. Providers translate what
// they support and silently drop the rest.
type PushPayload struct {
	Title       string
	Body        string
	Icon        string
	Image       string
	Badge       int
	Sound       string
	ClickAction string
	Data        map[string]string
	Category    Category
	Priority    Priority
	TTLSeconds  int
}

// ProviderOutcome is the per-token result reported by a push provider. Error
// is empty on success and carries a classified reason string otherwise.
type ProviderOutcome struct {
	Token     string
	MessageID string
	Error     string
}

// DispatchResult is the per-device outcome of one send attempt. It is folded
// into the notification record and logs, never persisted on its own.
type DispatchResult struct {
	Success   bool
	UserID    int64
	Platform  Platform
	Token     string
	MessageID string
	Error     string
}
