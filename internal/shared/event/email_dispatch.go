package event

const EmailDispatchDestination string = "notification_email_dispatch"
const EmailDispatchConsumerNotification string = "notification_email_dispatch_worker"

type EmailDispatchMessage struct {
	JobID          string `json:"job_id"`
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	HTMLBody       string `json:"html_body"`
	Category       string `json:"category"`
}
