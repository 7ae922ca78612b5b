// internal/models/validation.go
package models

import "time"

// ValidationStatus classifies an uploaded document. Ordering matters:
// a higher severity never downgrades to a lower one during validation.
type ValidationStatus string

const (
	StatusAuthentic   ValidationStatus = "authentic"
	StatusSuspicious  ValidationStatus = "suspicious"
	StatusPlaceholder ValidationStatus = "placeholder"
	StatusInvalid     ValidationStatus = "invalid"
)

// Severity returns the precedence rank of a status. Unknown statuses rank
// lowest so they can always be overwritten.
func (s ValidationStatus) Severity() int {
	switch s {
	case StatusInvalid:
		return 3
	case StatusPlaceholder:
		return 2
	case StatusSuspicious:
		return 1
	case StatusAuthentic:
		return 0
	default:
		return -1
	}
}

// DocumentValidationResult is the outcome of one heuristic validation call.
// It is created once per upload and never mutated afterwards.
type DocumentValidationResult struct {
	IsValid          bool              `json:"isValid"`
	ValidationStatus ValidationStatus  `json:"validationStatus"`
	ContentLength    int               `json:"contentLength"`
	ChecksumSHA256   string            `json:"checksumSHA256"`
	Filename         string            `json:"filename"`
	Category         string            `json:"category"`
	Errors           []string          `json:"errors"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ValidatedAt      time.Time         `json:"validatedAt"`
	UploadedBy       string            `json:"uploadedBy,omitempty"`
}

// DocumentSetResult summarizes a batch validation run.
type DocumentSetResult struct {
	IsValid bool                       `json:"isValid"`
	Results []DocumentValidationResult `json:"results"`
	Summary DocumentSetSummary         `json:"summary"`
}

// DocumentSetSummary holds per-status counts for a batch.
type DocumentSetSummary struct {
	Total       int `json:"total"`
	Authentic   int `json:"authentic"`
	Suspicious  int `json:"suspicious"`
	Placeholder int `json:"placeholder"`
	Invalid     int `json:"invalid"`
}

// RiskLevel grades the sensitive-document assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SensitiveDocumentAssessment is the coarse risk layer applied on top of the
// heuristic result for high-value categories.
type SensitiveDocumentAssessment struct {
	Category             string    `json:"category"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	RequiresManualReview bool      `json:"requiresManualReview"`
	SecurityFlags        []string  `json:"securityFlags"`
}
