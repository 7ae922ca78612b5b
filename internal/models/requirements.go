// internal/models/requirements.go
package models

// RequirementEntry is a single document-type obligation attached to a lender
// product, possibly gated on amount or product type.
type RequirementEntry struct {
	DocumentType string                 `json:"document_type"`
	Required     bool                   `json:"required"`
	Conditions   *RequirementConditions `json:"conditions,omitempty"`
}

// RequirementConditions gates a requirement on applicant context. A nil or
// absent field means that axis is unconstrained.
type RequirementConditions struct {
	MinAmount   *float64 `json:"minAmount,omitempty"`
	MaxAmount   *float64 `json:"maxAmount,omitempty"`
	ProductType string   `json:"productType,omitempty"`
}

// ConditionalRequirement is a normalized conditional rule with its
// applicability evaluated against the current context.
type ConditionalRequirement struct {
	Label     string   `json:"label"`
	Documents []string `json:"documents"`
	Applies   bool     `json:"applies"`
}

// NormalizedRequirements is the uniform projection of a raw requirement
// payload. Applies flags are recomputed on every normalization call and are
// never persisted.
type NormalizedRequirements struct {
	Required    []string                 `json:"required"`
	Optional    []string                 `json:"optional"`
	Conditional []ConditionalRequirement `json:"conditional"`
}

// RequirementContext is the applicant context conditional rules are
// evaluated against.
type RequirementContext struct {
	AmountRequested string `json:"amountRequested"`
	ProductType     string `json:"productType"`
}
