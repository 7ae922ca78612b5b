package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/models"
	"loandoc-workers/internal/requirements/aggregate"
)

// ==========================
// Test Helper Functions
// ==========================

func testRouter(t *testing.T) http.Handler {
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	validator := docvalid.New(nil, log)
	aggregator := aggregate.New(aggregate.NewMemoryStore(), log)
	documentHandler := NewDocumentHandler(validator, aggregator, nil, log)
	requirementsHandler := NewRequirementsHandler(nil)

	r := chi.NewRouter()
	r.Post("/api/v1/documents/validate", documentHandler.Validate)
	r.Post("/api/v1/documents/validate-batch", documentHandler.ValidateBatch)
	r.Post("/api/v1/documents/upload-status", documentHandler.UploadStatus)
	r.Get("/api/v1/requirements/{applicationType}", requirementsHandler.Get)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func encodedContent(size int) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), size))
}

// ==========================
// Validate Endpoint Tests
// ==========================

func TestValidate_Authentic(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate", ValidateRequest{
		FileName: "statement_jan.pdf",
		FileData: encodedContent(25000),
		Category: "bank_statements",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusAuthentic, resp.Result.ValidationStatus)
	assert.True(t, resp.Result.IsValid)
	// bank_statements is sensitive, so a clean result still carries a
	// medium-risk assessment.
	require.NotNil(t, resp.Assessment)
	assert.Equal(t, models.RiskMedium, resp.Assessment.RiskLevel)
}

func TestValidate_PlaceholderFilename(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate", ValidateRequest{
		FileName: "sample_bank_statement.pdf",
		FileData: encodedContent(80 * 1024),
		Category: "bank_statements",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusPlaceholder, resp.Result.ValidationStatus)
	assert.False(t, resp.Result.IsValid)
}

func TestValidate_BadBase64(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate", ValidateRequest{
		FileName: "statement.pdf",
		FileData: "!!!not-base64!!!",
		Category: "bank_statements",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_MissingFields(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate", ValidateRequest{
		FileName: "statement.pdf",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_MalformedBody(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/validate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Batch Endpoint Tests
// ==========================

func TestValidateBatch_MixedStatuses(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate-batch", ValidateBatchRequest{
		Documents: []docvalid.DocumentInput{
			{FileName: "statement_jan.pdf", FileData: encodedContent(25000), Category: "bank_statements"},
			{FileName: "tiny.pdf", FileData: encodedContent(1024), Category: "business_license"},
			{FileName: "demo_quote.pdf", FileData: encodedContent(15000), Category: "equipment_quote"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.DocumentSetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsValid)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Authentic)
	assert.Equal(t, 1, resp.Summary.Invalid)
	assert.Equal(t, 1, resp.Summary.Placeholder)
}

func TestValidateBatch_Empty(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/validate-batch", ValidateBatchRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Upload Status Tests
// ==========================

func TestUploadStatus_SyncsChecklist(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		ApplicationID: "app-1",
		Status:        "documents_required",
		Payload: map[string]any{
			"required_documents": []any{"tax_returns"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Synced)

	var types []string
	for _, entry := range resp.Documents {
		types = append(types, entry.DocumentType)
	}
	assert.ElementsMatch(t, []string{"tax_returns", "bank_statements"}, types)
}

func TestUploadStatus_ReportsCompletionPercentage(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		ApplicationID:     "app-1",
		Status:            "documents_required",
		UploadedDocuments: []string{"bank_statements"},
		Payload: map[string]any{
			"required_documents": []any{"tax_returns"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Synced)
	assert.Equal(t, 2, resp.RequiredCount)
	assert.Equal(t, 1, resp.UploadedCount)
	assert.Equal(t, 50, resp.CompletionPercent)
}

func TestUploadStatus_CompletionAgainstCachedChecklist(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		ApplicationID: "app-1",
		Payload: map[string]any{
			"required_documents": []any{"tax_returns"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// A later status without requirements still measures progress against
	// the cached checklist.
	rec = postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		ApplicationID:     "app-1",
		UploadedDocuments: []string{"tax_returns", "bank_statements"},
		Payload:           map[string]any{"status": "under_review"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Synced)
	assert.Equal(t, 2, resp.RequiredCount)
	assert.Equal(t, 2, resp.UploadedCount)
	assert.Equal(t, 100, resp.CompletionPercent)
}

func TestUploadStatus_NoRequirementsIsNoOp(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		ApplicationID: "app-1",
		Payload:       map[string]any{"status": "under_review"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UploadStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Synced)
	assert.Equal(t, 0, resp.RequiredCount)
	assert.Equal(t, 0, resp.CompletionPercent)
}

func TestUploadStatus_MissingApplicationID(t *testing.T) {
	router := testRouter(t)

	rec := postJSON(t, router, "/api/v1/documents/upload-status", UploadStatusRequest{
		Payload: map[string]any{"required_documents": []any{"tax_returns"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Requirements Endpoint Tests
// ==========================

func TestRequirements_KnownType(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requirements/equipment_financing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RequirementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "equipment_financing", resp.ApplicationType)

	var required []string
	for _, d := range resp.Required {
		required = append(required, d.DocumentType)
	}
	assert.ElementsMatch(t, []string{"bank_statements", "equipment_quote"}, required)
	assert.Equal(t, "Bank Statements", resp.Required[0].DisplayName)
}

func TestRequirements_UnknownType(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requirements/payday_loan", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
