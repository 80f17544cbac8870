package event

const ApplicationStatusDestination string = "application_status_changed"
const ApplicationStatusConsumerNotification string = "application_status_changed_notification"

// ApplicationStatusMessage is published by the applications service whenever a
// job application moves between pipeline stages.
type ApplicationStatusMessage struct {
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	ApplicationID int64  `json:"application_id"`
	JobTitle      string `json:"job_title"`
	CompanyName   string `json:"company_name"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}
