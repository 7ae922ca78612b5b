// internal/workers/documents/notify-missing-documents/models.go
package notifymissingdocuments

type Input struct {
	ApplicationID     string   `json:"applicationId"`
	RecipientEmail    string   `json:"recipientEmail,omitempty"`
	RecipientPhone    string   `json:"recipientPhone,omitempty"`
	Priority          string   `json:"priority,omitempty"`
	UploadedDocuments []string `json:"uploadedDocuments,omitempty"`
}

type Output struct {
	NotificationID   string   `json:"notificationId"`
	Status           string   `json:"status"` // "sent", "complete", "disabled"
	MissingDocuments []string `json:"missingDocuments"`
	SentAt           string   `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusComplete = "complete"
	StatusDisabled = "disabled"
)
