// internal/models/product.go
package models

// LenderProduct is reference data describing a single lender offering.
// It is fetched from the staff backend and never mutated by this system.
type LenderProduct struct {
	ID           string  `json:"id"`
	LenderID     string  `json:"lenderId"`
	LenderName   string  `json:"lenderName"`
	ProductName  string  `json:"productName"`
	Category     string  `json:"category"`
	Country      string  `json:"country"`
	AmountMin    float64 `json:"amountMin"`
	AmountMax    float64 `json:"amountMax"`
	RequiredDocs any     `json:"requiredDocuments"`
}

// LenderGroup is a lender together with its products, used to render
// product pickers grouped by lender.
type LenderGroup struct {
	LenderID   string          `json:"lenderId"`
	LenderName string          `json:"lenderName"`
	Products   []LenderProduct `json:"products"`
}

// CategorySummary aggregates the amount ranges of one product category.
type CategorySummary struct {
	Category      string  `json:"category"`
	MinAmount     float64 `json:"minAmount"`
	MaxAmount     float64 `json:"maxAmount"`
	ProductCount  int     `json:"productCount"`
	MatchingCount int     `json:"matchingCount"`
}

// ApplicantLocation is the richer location shape some client payloads send
// in place of a bare country string.
type ApplicantLocation struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
}
