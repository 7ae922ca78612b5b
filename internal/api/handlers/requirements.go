// internal/api/handlers/requirements.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loandoc-workers/pkg/registry"
)

// RequirementsHandler exposes the per-application-type document profiles
// from the category registry.
type RequirementsHandler struct {
	registry *registry.CategoryRegistry
}

func NewRequirementsHandler(reg *registry.CategoryRegistry) *RequirementsHandler {
	if reg == nil {
		reg = registry.Default()
	}
	return &RequirementsHandler{registry: reg}
}

// CategoryDetail describes one document category in a requirements response.
type CategoryDetail struct {
	DocumentType      string   `json:"documentType"`
	DisplayName       string   `json:"displayName"`
	AllowedExtensions []string `json:"allowedExtensions,omitempty"`
	MinSizeBytes      int      `json:"minSizeBytes,omitempty"`
}

// RequirementsResponse is the body of GET /api/v1/requirements/{applicationType}.
type RequirementsResponse struct {
	ApplicationType string           `json:"applicationType"`
	Required        []CategoryDetail `json:"required"`
	Optional        []CategoryDetail `json:"optional"`
}

// Get handles GET /api/v1/requirements/{applicationType}
func (h *RequirementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	applicationType := chi.URLParam(r, "applicationType")

	profile, ok := h.registry.ApplicationTypes[applicationType]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown application type")
		return
	}

	respondJSON(w, http.StatusOK, RequirementsResponse{
		ApplicationType: applicationType,
		Required:        h.details(profile.Required),
		Optional:        h.details(profile.Optional),
	})
}

func (h *RequirementsHandler) details(docTypes []string) []CategoryDetail {
	details := make([]CategoryDetail, 0, len(docTypes))
	for _, docType := range docTypes {
		detail := CategoryDetail{DocumentType: docType, DisplayName: docType}
		if rule, ok := h.registry.RuleFor(docType); ok {
			if rule.DisplayName != "" {
				detail.DisplayName = rule.DisplayName
			}
			detail.AllowedExtensions = rule.AllowedExtensions
			detail.MinSizeBytes = rule.MinSizeBytes
		}
		details = append(details, detail)
	}
	return details
}
