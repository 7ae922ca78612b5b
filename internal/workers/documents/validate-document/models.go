// internal/workers/documents/validate-document/models.go
package validatedocument

import "loandoc-workers/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
	FileName      string `json:"fileName"`
	FileData      string `json:"fileData"` // base64
	Category      string `json:"category"`
	UploadedBy    string `json:"uploadedBy,omitempty"`
}

type Output struct {
	ApplicationID string                              `json:"applicationId"`
	Result        *models.DocumentValidationResult    `json:"result"`
	Assessment    *models.SensitiveDocumentAssessment `json:"assessment,omitempty"`
}
