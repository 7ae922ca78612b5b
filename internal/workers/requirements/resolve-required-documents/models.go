// internal/workers/requirements/resolve-required-documents/models.go
package resolverequireddocuments

import "loandoc-workers/internal/models"

type Input struct {
	ApplicationID    string  `json:"applicationId"`
	ApplicantCountry any     `json:"applicantCountry,omitempty"`
	AmountRequested  float64 `json:"amountRequested"`
	SelectedCategory string  `json:"selectedCategory,omitempty"`
	ProductType      string  `json:"productType,omitempty"`
}

type Output struct {
	ApplicationID     string                    `json:"applicationId"`
	MatchingProducts  int                       `json:"matchingProducts"`
	Lenders           []models.LenderGroup      `json:"lenders"`
	Categories        []models.CategorySummary  `json:"categories"`
	RequiredDocuments []models.RequirementEntry `json:"requiredDocuments"`
}
