package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

func createNormalizer(t *testing.T) *Normalizer {
	return New(logger.NewZapAdapter(zaptest.NewLogger(t)))
}

// ==========================
// Shape Sniffing Tests
// ==========================

func TestNormalize_Shapes(t *testing.T) {
	ctx := models.RequirementContext{AmountRequested: "50000"}

	tests := []struct {
		name         string
		raw          any
		wantRequired []string
		wantOptional []string
	}{
		{
			name:         "nil payload",
			raw:          nil,
			wantRequired: []string{},
			wantOptional: []string{},
		},
		{
			name:         "bare array is the required list",
			raw:          []any{"bank_statements", "tax_returns"},
			wantRequired: []string{"bank_statements", "tax_returns"},
			wantOptional: []string{},
		},
		{
			name: "object with required and optional",
			raw: map[string]any{
				"required": []any{"bank_statements"},
				"optional": []any{"business_license"},
			},
			wantRequired: []string{"bank_statements"},
			wantOptional: []string{"business_license"},
		},
		{
			name: "fallback keys",
			raw: map[string]any{
				"requiredDocs":  []any{"tax_returns"},
				"optional_docs": []any{"ownership_info"},
			},
			wantRequired: []string{"tax_returns"},
			wantOptional: []string{"ownership_info"},
		},
		{
			name: "primary key wins over fallback",
			raw: map[string]any{
				"required":     []any{"bank_statements"},
				"requiredDocs": []any{"tax_returns"},
			},
			wantRequired: []string{"bank_statements"},
			wantOptional: []string{},
		},
		{
			name: "object members with document_type maps",
			raw: map[string]any{
				"required": []any{
					map[string]any{"document_type": "bank_statements"},
					map[string]any{"documentType": "tax_returns"},
					map[string]any{"type": "ownership_info"},
				},
			},
			wantRequired: []string{"bank_statements", "tax_returns", "ownership_info"},
			wantOptional: []string{},
		},
		{
			name:         "unrecognized scalar degrades to empty",
			raw:          42,
			wantRequired: []string{},
			wantOptional: []string{},
		},
		{
			name: "blank and non-string members dropped",
			raw: map[string]any{
				"required": []any{"bank_statements", "  ", 7, nil},
			},
			wantRequired: []string{"bank_statements"},
			wantOptional: []string{},
		},
		{
			name: "object without section keys yields empty lists",
			raw: map[string]any{
				"status": "pending_review",
			},
			wantRequired: []string{},
			wantOptional: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := createNormalizer(t).Normalize(tt.raw, ctx)
			assert.Equal(t, tt.wantRequired, norm.Required)
			assert.Equal(t, tt.wantOptional, norm.Optional)
		})
	}
}

// ==========================
// Conditional Rule Tests
// ==========================

func TestNormalize_ConditionalRules(t *testing.T) {
	tests := []struct {
		name        string
		rule        any
		ctx         models.RequirementContext
		wantApplies bool
		wantDocs    []string
	}{
		{
			name:        "bare string rule always applies",
			rule:        "articles_of_incorporation",
			ctx:         models.RequirementContext{},
			wantApplies: true,
			wantDocs:    []string{"articles_of_incorporation"},
		},
		{
			name:        "string array rule always applies",
			rule:        []any{"ownership_info", "articles_of_incorporation"},
			ctx:         models.RequirementContext{},
			wantApplies: true,
			wantDocs:    []string{"ownership_info", "articles_of_incorporation"},
		},
		{
			name: "min amount gate passes",
			rule: map[string]any{
				"label":      "Large loans",
				"min_amount": 100000,
				"documents":  []any{"financial_statements"},
			},
			ctx:         models.RequirementContext{AmountRequested: "$250,000.00"},
			wantApplies: true,
			wantDocs:    []string{"financial_statements"},
		},
		{
			name: "min amount gate fails",
			rule: map[string]any{
				"min_amount": 100000,
				"documents":  []any{"financial_statements"},
			},
			ctx:         models.RequirementContext{AmountRequested: "50000"},
			wantApplies: false,
			wantDocs:    []string{"financial_statements"},
		},
		{
			name: "max amount gate fails",
			rule: map[string]any{
				"max_amount": 100000,
				"documents":  []any{"ownership_info"},
			},
			ctx:         models.RequirementContext{AmountRequested: "250000"},
			wantApplies: false,
			wantDocs:    []string{"ownership_info"},
		},
		{
			name: "product type string matches case-insensitively",
			rule: map[string]any{
				"product_type": "Equipment Financing",
				"documents":    []any{"equipment_quote"},
			},
			ctx:         models.RequirementContext{ProductType: "equipment financing"},
			wantApplies: true,
			wantDocs:    []string{"equipment_quote"},
		},
		{
			name: "product type array matches any member",
			rule: map[string]any{
				"product_types": []any{"Business Loan", "Line of Credit"},
				"documents":     []any{"financial_statements"},
			},
			ctx:         models.RequirementContext{ProductType: "line of credit"},
			wantApplies: true,
			wantDocs:    []string{"financial_statements"},
		},
		{
			name: "product type mismatch",
			rule: map[string]any{
				"product_type": "Equipment Financing",
				"documents":    []any{"equipment_quote"},
			},
			ctx:         models.RequirementContext{ProductType: "Business Loan"},
			wantApplies: false,
			wantDocs:    []string{"equipment_quote"},
		},
		{
			name: "all gates must pass",
			rule: map[string]any{
				"min_amount":   100000,
				"product_type": "Business Loan",
				"documents":    []any{"financial_statements"},
			},
			ctx:         models.RequirementContext{AmountRequested: "250000", ProductType: "Business Loan"},
			wantApplies: true,
			wantDocs:    []string{"financial_statements"},
		},
		{
			name: "docs under fallback key",
			rule: map[string]any{
				"document_categories": []any{"ownership_info"},
			},
			ctx:         models.RequirementContext{},
			wantApplies: true,
			wantDocs:    []string{"ownership_info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := createNormalizer(t).Normalize(map[string]any{
				"conditional": []any{tt.rule},
			}, tt.ctx)

			require.Len(t, norm.Conditional, 1)
			assert.Equal(t, tt.wantApplies, norm.Conditional[0].Applies)
			assert.Equal(t, tt.wantDocs, norm.Conditional[0].Documents)
		})
	}
}

func TestNormalize_MalformedConditionalDropped(t *testing.T) {
	norm := createNormalizer(t).Normalize(map[string]any{
		"conditional": []any{
			map[string]any{"label": "no documents at all"},
			42,
			"ownership_info",
		},
	}, models.RequirementContext{})

	// Only the bare-string rule survives.
	require.Len(t, norm.Conditional, 1)
	assert.Equal(t, []string{"ownership_info"}, norm.Conditional[0].Documents)
}

func TestNormalize_SingleConditionalObject(t *testing.T) {
	norm := createNormalizer(t).Normalize(map[string]any{
		"conditional": map[string]any{
			"documents": []any{"financial_statements"},
		},
	}, models.RequirementContext{})

	require.Len(t, norm.Conditional, 1)
	assert.True(t, norm.Conditional[0].Applies)
}

// ==========================
// Union and Amount Parsing Tests
// ==========================

func TestRequiredDocuments_Union(t *testing.T) {
	norm := models.NormalizedRequirements{
		Required: []string{"bank_statements", "tax_returns"},
		Optional: []string{"business_license"},
		Conditional: []models.ConditionalRequirement{
			{Documents: []string{"financial_statements", "bank_statements"}, Applies: true},
			{Documents: []string{"equipment_quote"}, Applies: false},
		},
	}

	got := RequiredDocuments(norm)
	// Dedup keeps first occurrence; non-applying rules contribute nothing.
	assert.Equal(t, []string{"bank_statements", "tax_returns", "financial_statements"}, got)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "50000", want: 50000},
		{input: "$50,000.00", want: 50000},
		{input: "USD 1,250,000", want: 1250000},
		{input: "", want: 0},
		{input: "no digits", want: 0},
		{input: "1.2.3", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.input))
		})
	}
}
