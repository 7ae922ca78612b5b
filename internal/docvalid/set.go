// internal/docvalid/set.go
package docvalid

import (
	"loandoc-workers/internal/models"
)

// DocumentInput is one upload in a batch validation request.
type DocumentInput struct {
	FileName   string `json:"fileName"`
	FileData   string `json:"fileData"`
	Category   string `json:"category"`
	UploadedBy string `json:"uploadedBy,omitempty"`
}

// ValidateDocumentSet validates a batch and computes per-status counts.
// The batch is valid only when it contains no placeholder and no invalid
// documents; suspicious documents alone do not block it. Undecodable
// members surface the decode error for the whole batch.
func (v *Validator) ValidateDocumentSet(docs []DocumentInput) (*models.DocumentSetResult, error) {
	out := &models.DocumentSetResult{
		Results: make([]models.DocumentValidationResult, 0, len(docs)),
		Summary: models.DocumentSetSummary{Total: len(docs)},
	}

	for _, doc := range docs {
		result, err := v.ValidateDocument(doc.FileName, doc.FileData, doc.Category, doc.UploadedBy)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, *result)

		switch result.ValidationStatus {
		case models.StatusAuthentic:
			out.Summary.Authentic++
		case models.StatusSuspicious:
			out.Summary.Suspicious++
		case models.StatusPlaceholder:
			out.Summary.Placeholder++
		case models.StatusInvalid:
			out.Summary.Invalid++
		}
	}

	out.IsValid = out.Summary.Placeholder == 0 && out.Summary.Invalid == 0
	return out, nil
}
