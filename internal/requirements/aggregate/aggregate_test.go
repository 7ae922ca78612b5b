package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

func createAggregator(t *testing.T) *Aggregator {
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	return New(NewMemoryStore(), log)
}

func entryTypes(entries []models.RequirementEntry) []string {
	var types []string
	for _, e := range entries {
		types = append(types, e.DocumentType)
	}
	return types
}

func entryByType(t *testing.T, entries []models.RequirementEntry, docType string) models.RequirementEntry {
	for _, e := range entries {
		if e.DocumentType == docType {
			return e
		}
	}
	t.Fatalf("entry %s not found in %v", docType, entryTypes(entries))
	return models.RequirementEntry{}
}

// ==========================
// Checklist Aggregation Tests
// ==========================

func TestAggregateRequiredDocuments(t *testing.T) {
	products := []models.LenderProduct{
		{
			ID: "p1", Category: "Business Loan",
			RequiredDocs: map[string]any{
				"required": []any{"bank_statements", "tax_returns"},
				"optional": []any{"business_license"},
			},
		},
		{
			ID: "p2", Category: "Business Loan",
			RequiredDocs: map[string]any{
				"required": []any{"bank_statements"},
				"conditional": []any{
					map[string]any{
						"min_amount": 100000,
						"documents":  []any{"financial_statements"},
					},
				},
			},
		},
		{
			ID: "p3", Category: "Equipment Financing",
			RequiredDocs: []any{"equipment_quote"},
		},
	}

	agg := createAggregator(t)

	t.Run("merges category products only", func(t *testing.T) {
		entries := agg.AggregateRequiredDocuments(products, "Business Loan", 50000)

		types := entryTypes(entries)
		assert.NotContains(t, types, "equipment_quote")
		assert.Contains(t, types, "bank_statements")
		assert.Contains(t, types, "tax_returns")
		assert.Contains(t, types, "business_license")
		// Conditional rule gated on 100k does not apply at 50k.
		assert.NotContains(t, types, "financial_statements")

		assert.True(t, entryByType(t, entries, "bank_statements").Required)
		assert.False(t, entryByType(t, entries, "business_license").Required)
	})

	t.Run("applying conditional adds its documents", func(t *testing.T) {
		entries := agg.AggregateRequiredDocuments(products, "Business Loan", 250000)
		financials := entryByType(t, entries, "financial_statements")
		assert.True(t, financials.Required)
	})

	t.Run("matches on product name too", func(t *testing.T) {
		named := []models.LenderProduct{
			{ID: "p1", ProductName: "Flex Credit", Category: "Line of Credit",
				RequiredDocs: []any{"bank_statements"}},
		}
		entries := agg.AggregateRequiredDocuments(named, "Flex Credit", 50000)
		assert.Equal(t, []string{"bank_statements"}, entryTypes(entries))
	})

	t.Run("idempotent for identical input", func(t *testing.T) {
		first := agg.AggregateRequiredDocuments(products, "Business Loan", 250000)
		second := agg.AggregateRequiredDocuments(products, "Business Loan", 250000)
		assert.Equal(t, first, second)
	})

	t.Run("no matching category yields empty list", func(t *testing.T) {
		entries := agg.AggregateRequiredDocuments(products, "Payday Loan", 50000)
		assert.Empty(t, entries)
	})
}

func TestAggregateRequiredDocuments_LastWriteWins(t *testing.T) {
	products := []models.LenderProduct{
		{ID: "p1", Category: "Business Loan",
			RequiredDocs: map[string]any{"optional": []any{"business_license"}}},
		{ID: "p2", Category: "Business Loan",
			RequiredDocs: map[string]any{"required": []any{"business_license"}}},
	}

	agg := createAggregator(t)
	entries := agg.AggregateRequiredDocuments(products, "Business Loan", 50000)

	require.Len(t, entries, 1)
	// p2 processed after p1, so its required=true wins.
	assert.True(t, entries[0].Required)
}

// ==========================
// Status Sync Tests
// ==========================

func TestSyncFromStatus_ForcesAlwaysRequired(t *testing.T) {
	agg := createAggregator(t)

	entries, err := agg.SyncFromStatus(context.Background(), models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload:       map[string]any{"required_documents": []any{"tax_returns"}},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tax_returns", "bank_statements"}, entryTypes(entries))
	assert.True(t, entryByType(t, entries, "bank_statements").Required)
}

func TestSyncFromStatus_UpgradesOptionalAlwaysRequired(t *testing.T) {
	agg := createAggregator(t)

	entries, err := agg.SyncFromStatus(context.Background(), models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload: map[string]any{
			"required_documents": map[string]any{
				"required": []any{"tax_returns"},
				"optional": []any{"bank_statements"},
			},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, entryTypes(entries), "tax_returns")
	// The server reported bank_statements optional, but it is always required.
	assert.True(t, entryByType(t, entries, "bank_statements").Required)
}

func TestSyncFromStatus_MergePreservesCachedEntries(t *testing.T) {
	agg := createAggregator(t)
	ctx := context.Background()

	_, err := agg.SyncFromStatus(ctx, models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload:       map[string]any{"required_documents": []any{"tax_returns"}},
	})
	require.NoError(t, err)

	entries, err := agg.SyncFromStatus(ctx, models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload:       map[string]any{"required_documents": []any{"equipment_quote"}},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"tax_returns", "equipment_quote", "bank_statements"},
		entryTypes(entries))
}

func TestSyncFromStatus_UnrecognizedPayloadIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	agg := New(store, log)
	ctx := context.Background()

	seeded := []models.RequirementEntry{{DocumentType: "tax_returns", Required: true}}
	require.NoError(t, store.Save(ctx, "app-1", seeded))

	entries, err := agg.SyncFromStatus(ctx, models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload:       map[string]any{"status": "under_review"},
	})

	require.NoError(t, err)
	assert.Nil(t, entries)

	cached, err := store.Load(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, seeded, cached)
}

func TestSyncFromStatus_NilPayload(t *testing.T) {
	agg := createAggregator(t)

	entries, err := agg.SyncFromStatus(context.Background(), models.ApplicationStatus{
		ApplicationID: "app-1",
	})

	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestSyncFromStatus_CustomAlwaysRequired(t *testing.T) {
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	agg := NewWithAlwaysRequired(NewMemoryStore(), []string{"articles_of_incorporation"}, log)

	entries, err := agg.SyncFromStatus(context.Background(), models.ApplicationStatus{
		ApplicationID: "app-1",
		Payload:       map[string]any{"required_documents": []any{"tax_returns"}},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"tax_returns", "articles_of_incorporation"},
		entryTypes(entries))
}
