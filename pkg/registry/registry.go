// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Default returns the compiled-in registry used when no registry file is
// configured. The size floors mirror the staff backend's upload policy.
func Default() *CategoryRegistry {
	return &CategoryRegistry{
		Version:        "1.0",
		AlwaysRequired: []string{"bank_statements"},
		SensitiveCategories: []string{
			"tax_returns", "bank_statements", "financial_statements",
		},
		Categories: map[string]CategoryRule{
			"bank_statements": {
				DisplayName:       "Bank Statements",
				AllowedExtensions: []string{".pdf", ".csv"},
				MinSizeBytes:      20000,
			},
			"tax_returns": {
				DisplayName:       "Tax Returns",
				AllowedExtensions: []string{".pdf"},
				MinSizeBytes:      100000,
			},
			"financial_statements": {
				DisplayName:       "Financial Statements",
				AllowedExtensions: []string{".pdf", ".xlsx", ".xls"},
				MinSizeBytes:      30000,
			},
			"business_license": {
				DisplayName:       "Business License",
				AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png"},
				MinSizeBytes:      10000,
			},
			"equipment_quote": {
				DisplayName:       "Equipment Quote",
				AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png"},
				MinSizeBytes:      10000,
			},
			"ownership_info": {
				DisplayName:       "Ownership Information",
				AllowedExtensions: []string{".pdf", ".docx"},
				MinSizeBytes:      5120,
			},
			"articles_of_incorporation": {
				DisplayName:       "Articles of Incorporation",
				AllowedExtensions: []string{".pdf"},
				MinSizeBytes:      20000,
			},
		},
		ApplicationTypes: map[string]TypeProfile{
			"business_loan": {
				Required: []string{"bank_statements", "tax_returns", "financial_statements"},
				Optional: []string{"business_license", "articles_of_incorporation"},
			},
			"equipment_financing": {
				Required: []string{"bank_statements", "equipment_quote"},
				Optional: []string{"tax_returns", "ownership_info"},
			},
			"line_of_credit": {
				Required: []string{"bank_statements", "financial_statements"},
				Optional: []string{"tax_returns"},
			},
		},
	}
}

// Load reads and validates a registry file. An empty path returns the
// compiled-in defaults.
func Load(path string) (*CategoryRegistry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid registry file %s: %s", path, strings.Join(msgs, "; "))
	}

	var reg CategoryRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// RuleFor returns the rule for a category, if one exists.
func (r *CategoryRegistry) RuleFor(category string) (CategoryRule, bool) {
	rule, ok := r.Categories[category]
	return rule, ok
}

// IsSensitive reports whether a category is subject to the sensitive-
// document risk assessment.
func (r *CategoryRegistry) IsSensitive(category string) bool {
	for _, c := range r.SensitiveCategories {
		if c == category {
			return true
		}
	}
	return false
}
