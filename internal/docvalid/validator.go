// internal/docvalid/validator.go
package docvalid

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
	"loandoc-workers/pkg/registry"
)

const (
	// MinDocumentBytes is the smallest decoded payload accepted at all.
	MinDocumentBytes = 5120
	// MaxDocumentBytes caps uploads at 100MB of decoded content.
	MaxDocumentBytes = 104_857_600
	// SuspiciousBytes flags small-but-not-obviously-fake uploads.
	SuspiciousBytes = 10240
)

// placeholderKeywords mark filenames of obvious non-documents.
var placeholderKeywords = []string{
	"sample", "example", "test", "placeholder", "demo", "template",
	"dummy", "fake", "mock", "specimen", "draft",
}

// Validator flags uploads as authentic, placeholder, suspicious, or invalid
// from size and filename signals. It never inspects document content beyond
// hashing it for the audit trail.
type Validator struct {
	registry *registry.CategoryRegistry
	logger   logger.Logger
}

func New(reg *registry.CategoryRegistry, log logger.Logger) *Validator {
	if reg == nil {
		reg = registry.Default()
	}
	return &Validator{
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"component": "document-validator"}),
	}
}

// ValidateDocument classifies a single base64-encoded upload. The only error
// path is undecodable input; every heuristic outcome is expressed through
// the result's status and error list instead.
func (v *Validator) ValidateDocument(fileName, fileData, category, uploadedBy string) (*models.DocumentValidationResult, error) {
	decoded, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return nil, fmt.Errorf("decode document data: %w", err)
	}

	sum := sha256.Sum256(decoded)

	result := &models.DocumentValidationResult{
		ValidationStatus: models.StatusAuthentic,
		ContentLength:    len(decoded),
		ChecksumSHA256:   hex.EncodeToString(sum[:]),
		Filename:         fileName,
		Category:         category,
		Errors:           []string{},
		Metadata: map[string]string{
			"extension":    strings.ToLower(filepath.Ext(fileName)),
			"encodedBytes": strconv.Itoa(len(fileData)),
		},
		ValidatedAt: time.Now().UTC(),
		UploadedBy:  uploadedBy,
	}

	// Hard size bounds first: outside them the document is rejected outright.
	if len(decoded) < MinDocumentBytes {
		downgrade(result, models.StatusInvalid,
			fmt.Sprintf("file too small: %d bytes (minimum %d)", len(decoded), MinDocumentBytes))
	} else if len(decoded) > MaxDocumentBytes {
		downgrade(result, models.StatusInvalid,
			fmt.Sprintf("file too large: %d bytes (maximum %d)", len(decoded), MaxDocumentBytes))
	}

	placeholderHit := matchPlaceholderKeyword(fileName)
	if placeholderHit != "" {
		downgrade(result, models.StatusPlaceholder,
			fmt.Sprintf("filename contains placeholder keyword %q", placeholderHit))
	}

	// Small but not obviously fake.
	if placeholderHit == "" && len(decoded) >= MinDocumentBytes && len(decoded) < SuspiciousBytes {
		downgrade(result, models.StatusSuspicious,
			fmt.Sprintf("file suspiciously small: %d bytes", len(decoded)))
	}

	v.validateCategory(result, fileName, len(decoded), category)

	result.IsValid = len(result.Errors) == 0 && result.ValidationStatus == models.StatusAuthentic

	v.logger.Info("document validated", map[string]interface{}{
		"filename": fileName,
		"category": category,
		"status":   string(result.ValidationStatus),
		"bytes":    len(decoded),
	})
	return result, nil
}

// validateCategory applies per-category extension and size-floor rules.
// Violations only ever downgrade to suspicious; an invalid or placeholder
// status set earlier stays put.
func (v *Validator) validateCategory(result *models.DocumentValidationResult, fileName string, size int, category string) {
	rule, ok := v.registry.RuleFor(category)
	if !ok {
		return
	}

	if len(rule.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(fileName))
		allowed := false
		for _, e := range rule.AllowedExtensions {
			if ext == strings.ToLower(e) {
				allowed = true
				break
			}
		}
		if !allowed {
			downgrade(result, models.StatusSuspicious,
				fmt.Sprintf("extension %q not expected for category %s", ext, category))
		}
	}

	if rule.MinSizeBytes > 0 && size < rule.MinSizeBytes {
		downgrade(result, models.StatusSuspicious,
			fmt.Sprintf("file below %d byte floor for category %s", rule.MinSizeBytes, category))
	}
}

// downgrade applies a status by severity rank: the stored status only ever
// moves towards invalid, never back towards authentic. Every applied or
// attempted downgrade records its reason.
func downgrade(result *models.DocumentValidationResult, status models.ValidationStatus, reason string) {
	if status.Severity() > result.ValidationStatus.Severity() {
		result.ValidationStatus = status
	}
	result.Errors = append(result.Errors, reason)
}

func matchPlaceholderKeyword(fileName string) string {
	lower := strings.ToLower(fileName)
	for _, kw := range placeholderKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
