// internal/api/handlers/documents.go
package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"loandoc-workers/internal/audit"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/common/metrics"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/models"
	"loandoc-workers/internal/requirements/aggregate"
)

// DocumentHandler serves the document validation and checklist endpoints.
type DocumentHandler struct {
	validator  *docvalid.Validator
	aggregator *aggregate.Aggregator
	auditor    *audit.Indexer
	logger     logger.Logger
}

func NewDocumentHandler(validator *docvalid.Validator, aggregator *aggregate.Aggregator, auditor *audit.Indexer, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		validator:  validator,
		aggregator: aggregator,
		auditor:    auditor,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// ValidateRequest is the body of POST /api/v1/documents/validate.
type ValidateRequest struct {
	FileName   string `json:"fileName"`
	FileData   string `json:"fileData"` // base64
	Category   string `json:"category"`
	UploadedBy string `json:"uploadedBy,omitempty"`
}

// ValidateResponse pairs the heuristic result with the sensitive-category
// assessment when one applies.
type ValidateResponse struct {
	Result     *models.DocumentValidationResult    `json:"result"`
	Assessment *models.SensitiveDocumentAssessment `json:"assessment,omitempty"`
}

// Validate handles POST /api/v1/documents/validate
func (h *DocumentHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FileName == "" || req.FileData == "" {
		respondError(w, http.StatusBadRequest, "fileName and fileData are required")
		return
	}

	start := time.Now()
	result, err := h.validator.ValidateDocument(req.FileName, req.FileData, req.Category, req.UploadedBy)
	if err != nil {
		respondError(w, http.StatusBadRequest, "fileData is not valid base64")
		return
	}

	metrics.DocumentsValidated.WithLabelValues(string(result.ValidationStatus), req.Category).Inc()
	h.auditor.IndexValidation(r.Context(), result, time.Since(start).Milliseconds())

	resp := ValidateResponse{Result: result}
	if assessment := h.validator.ValidateSensitiveDocument(result); assessment.RiskLevel != models.RiskLow {
		resp.Assessment = assessment
	}

	respondJSON(w, http.StatusOK, resp)
}

// ValidateBatchRequest is the body of POST /api/v1/documents/validate-batch.
type ValidateBatchRequest struct {
	Documents []docvalid.DocumentInput `json:"documents"`
}

// ValidateBatch handles POST /api/v1/documents/validate-batch
func (h *DocumentHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Documents) == 0 {
		respondError(w, http.StatusBadRequest, "At least one document is required")
		return
	}

	result, err := h.validator.ValidateDocumentSet(req.Documents)
	if err != nil {
		respondError(w, http.StatusBadRequest, "a document payload is not valid base64")
		return
	}

	for _, res := range result.Results {
		metrics.DocumentsValidated.WithLabelValues(string(res.ValidationStatus), res.Category).Inc()
	}

	respondJSON(w, http.StatusOK, result)
}

// UploadStatusRequest is the body of POST /api/v1/documents/upload-status.
// It mirrors the status payload the staff backend reports after an upload,
// plus the document types the applicant has uploaded so far.
type UploadStatusRequest struct {
	ApplicationID     string         `json:"applicationId"`
	Status            string         `json:"status,omitempty"`
	UploadedDocuments []string       `json:"uploadedDocuments,omitempty"`
	Payload           map[string]any `json:"payload"`
}

// UploadStatusResponse reports the checklist after the sync and how far
// through its required documents the application is.
type UploadStatusResponse struct {
	ApplicationID     string                    `json:"applicationId"`
	Synced            bool                      `json:"synced"`
	Documents         []models.RequirementEntry `json:"documents"`
	RequiredCount     int                       `json:"requiredCount"`
	UploadedCount     int                       `json:"uploadedCount"`
	CompletionPercent int                       `json:"completionPercent"`
}

// UploadStatus handles POST /api/v1/documents/upload-status
func (h *DocumentHandler) UploadStatus(w http.ResponseWriter, r *http.Request) {
	var req UploadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ApplicationID == "" {
		respondError(w, http.StatusBadRequest, "applicationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := h.aggregator.SyncFromStatus(ctx, models.ApplicationStatus{
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
		Payload:       req.Payload,
	})
	if err != nil {
		h.logger.WithError(err).Error("checklist sync failed", map[string]interface{}{
			"applicationId": req.ApplicationID,
		})
		respondError(w, http.StatusInternalServerError, "Failed to sync document checklist")
		return
	}

	outcome := "skipped"
	if entries != nil {
		outcome = "synced"
	}
	metrics.ChecklistSyncs.WithLabelValues(outcome).Inc()

	// A payload without requirements still reports completion against the
	// cached checklist.
	checklist := entries
	if checklist == nil {
		cached, err := h.aggregator.Checklist(ctx, req.ApplicationID)
		if err != nil {
			h.logger.WithError(err).Error("checklist load failed", map[string]interface{}{
				"applicationId": req.ApplicationID,
			})
			respondError(w, http.StatusInternalServerError, "Failed to load document checklist")
			return
		}
		checklist = cached
	}

	required, uploaded, percent := completionStats(checklist, req.UploadedDocuments)

	respondJSON(w, http.StatusOK, UploadStatusResponse{
		ApplicationID:     req.ApplicationID,
		Synced:            entries != nil,
		Documents:         entries,
		RequiredCount:     required,
		UploadedCount:     uploaded,
		CompletionPercent: percent,
	})
}

// completionStats counts the checklist's required document types against the
// uploaded set and expresses progress as a whole percentage. An empty
// checklist reports zero progress.
func completionStats(entries []models.RequirementEntry, uploadedDocs []string) (required, uploaded, percent int) {
	uploadedSet := make(map[string]struct{}, len(uploadedDocs))
	for _, doc := range uploadedDocs {
		if doc = strings.TrimSpace(doc); doc != "" {
			uploadedSet[doc] = struct{}{}
		}
	}

	for _, entry := range entries {
		if !entry.Required {
			continue
		}
		required++
		if _, ok := uploadedSet[entry.DocumentType]; ok {
			uploaded++
		}
	}

	if required > 0 {
		percent = int(math.Round(float64(uploaded) / float64(required) * 100))
	}
	return required, uploaded, percent
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
