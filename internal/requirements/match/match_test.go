package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loandoc-workers/internal/models"
)

func sampleProducts() []models.LenderProduct {
	return []models.LenderProduct{
		{ID: "p1", LenderID: "l1", LenderName: "First Capital", ProductName: "Term Loan",
			Category: "Business Loan", Country: "US", AmountMin: 10000, AmountMax: 500000},
		{ID: "p2", LenderID: "l2", LenderName: "Northern Finance", ProductName: "Equipment Lease",
			Category: "Equipment Financing", Country: "CA", AmountMin: 5000, AmountMax: 250000},
		{ID: "p3", LenderID: "l1", LenderName: "First Capital", ProductName: "Flex Credit",
			Category: "Line of Credit", Country: "", AmountMin: 1000, AmountMax: 100000},
		{ID: "p4", LenderID: "l3", LenderName: "", ProductName: "Bridge Loan",
			Category: "Business Loan", Country: "US", AmountMin: 50000, AmountMax: 2000000},
	}
}

// ==========================
// Country Normalization Tests
// ==========================

func TestNormalizeCountryCode(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "two-letter code passes through", input: "us", want: "US"},
		{name: "unknown two-letter code still passes", input: "zz", want: "ZZ"},
		{name: "full country name", input: "United States", want: "US"},
		{name: "name with padding", input: "  Canada  ", want: "CA"},
		{name: "alias", input: "Great Britain", want: "GB"},
		{name: "unknown name", input: "Atlantis", want: ""},
		{name: "empty string", input: "", want: ""},
		{name: "location struct prefers code", input: models.ApplicantLocation{Country: "Canada", CountryCode: "US"}, want: "US"},
		{name: "location struct falls back to name", input: models.ApplicantLocation{Country: "Canada"}, want: "CA"},
		{name: "nil location pointer", input: (*models.ApplicantLocation)(nil), want: ""},
		{name: "map with countryCode", input: map[string]any{"countryCode": "AU"}, want: "AU"},
		{name: "map with country name", input: map[string]any{"country": "Mexico"}, want: "MX"},
		{name: "map with nothing usable", input: map[string]any{"region": "EMEA"}, want: ""},
		{name: "unsupported type", input: 42, want: ""},
		{name: "nil", input: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCountryCode(tt.input))
		})
	}
}

// ==========================
// Product Filter Tests
// ==========================

func TestFilterProductsForApplicant(t *testing.T) {
	products := sampleProducts()

	t.Run("US applicant mid-range amount", func(t *testing.T) {
		got := FilterProductsForApplicant(products, "United States", 60000)
		require.Len(t, got, 3)
		// p2 is CA-only; p3 matches because blank country is universal.
		assert.Equal(t, "p1", got[0].ID)
		assert.Equal(t, "p3", got[1].ID)
		assert.Equal(t, "p4", got[2].ID)
	})

	t.Run("amount bounds are inclusive", func(t *testing.T) {
		got := FilterProductsForApplicant(products, "US", 500000)
		ids := []string{}
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		assert.Contains(t, ids, "p1")
	})

	t.Run("unknown country only matches universal products", func(t *testing.T) {
		got := FilterProductsForApplicant(products, "Atlantis", 60000)
		require.Len(t, got, 1)
		assert.Equal(t, "p3", got[0].ID)
	})

	t.Run("zero amount matches nothing", func(t *testing.T) {
		assert.Nil(t, FilterProductsForApplicant(products, "US", 0))
	})

	t.Run("negative amount matches nothing", func(t *testing.T) {
		assert.Nil(t, FilterProductsForApplicant(products, "US", -100))
	})

	t.Run("NaN amount matches nothing", func(t *testing.T) {
		assert.Nil(t, FilterProductsForApplicant(products, "US", math.NaN()))
	})
}

// ==========================
// Lender Grouping Tests
// ==========================

func TestGroupProductsByLender(t *testing.T) {
	groups := GroupProductsByLender(sampleProducts())

	require.Len(t, groups, 3)
	// Sorted by lender name; the synthesized name sorts last.
	assert.Equal(t, "First Capital", groups[0].LenderName)
	assert.Equal(t, "Lender l3", groups[1].LenderName)
	assert.Equal(t, "Northern Finance", groups[2].LenderName)

	// Products within a group sort by product name.
	require.Len(t, groups[0].Products, 2)
	assert.Equal(t, "Flex Credit", groups[0].Products[0].ProductName)
	assert.Equal(t, "Term Loan", groups[0].Products[1].ProductName)
}

func TestGroupProductsByLender_Empty(t *testing.T) {
	assert.Empty(t, GroupProductsByLender(nil))
}

func TestGroupProductsByLender_Idempotent(t *testing.T) {
	first := GroupProductsByLender(sampleProducts())

	var flattened []models.LenderProduct
	for _, group := range first {
		flattened = append(flattened, group.Products...)
	}

	// Regrouping the flattened groups reproduces membership and order.
	assert.Equal(t, first, GroupProductsByLender(flattened))
}

// ==========================
// Category Summary Tests
// ==========================

func TestBuildCategorySummaries(t *testing.T) {
	summaries := BuildCategorySummaries(sampleProducts(), 60000)

	require.Len(t, summaries, 3)
	assert.Equal(t, "Business Loan", summaries[0].Category)
	assert.Equal(t, "Equipment Financing", summaries[1].Category)
	assert.Equal(t, "Line of Credit", summaries[2].Category)

	business := summaries[0]
	assert.Equal(t, 2, business.ProductCount)
	assert.Equal(t, 10000.0, business.MinAmount)
	assert.Equal(t, 2000000.0, business.MaxAmount)
	assert.Equal(t, 2, business.MatchingCount)

	lineOfCredit := summaries[2]
	// 60000 is outside Flex Credit's range.
	assert.Equal(t, 0, lineOfCredit.MatchingCount)
}

func TestBuildCategorySummaries_NoDeclaredAmounts(t *testing.T) {
	summaries := BuildCategorySummaries([]models.LenderProduct{
		{ID: "p1", Category: "Business Loan"},
	}, 60000)

	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].MinAmount)
	assert.Equal(t, 0.0, summaries[0].MaxAmount)
	assert.Equal(t, 1, summaries[0].ProductCount)
}

func TestBuildCategorySummaries_SkipsBlankCategory(t *testing.T) {
	summaries := BuildCategorySummaries([]models.LenderProduct{
		{ID: "p1", Category: "  "},
		{ID: "p2", Category: "Business Loan", AmountMin: 1000, AmountMax: 5000},
	}, 2000)

	require.Len(t, summaries, 1)
	assert.Equal(t, "Business Loan", summaries[0].Category)
}
