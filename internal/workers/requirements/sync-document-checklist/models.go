// internal/workers/requirements/sync-document-checklist/models.go
package syncdocumentchecklist

import "loandoc-workers/internal/models"

type Input struct {
	ApplicationID string         `json:"applicationId"`
	Status        string         `json:"status,omitempty"`
	Payload       map[string]any `json:"payload"`
}

type Output struct {
	ApplicationID string                    `json:"applicationId"`
	Synced        bool                      `json:"synced"`
	DocumentCount int                       `json:"documentCount"`
	Documents     []models.RequirementEntry `json:"documents"`
}
