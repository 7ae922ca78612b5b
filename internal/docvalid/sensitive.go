// internal/docvalid/sensitive.go
package docvalid

import (
	"strings"

	"loandoc-workers/internal/models"
)

// ValidateSensitiveDocument layers a coarse risk grade over a heuristic
// result for high-value categories (tax returns, bank statements, financial
// statements per the default registry). Risk is high, and manual review
// required, only when the category is sensitive AND the heuristics already
// raised at least one security flag. A sensitive category with a clean
// result grades medium; everything else is low.
func (v *Validator) ValidateSensitiveDocument(result *models.DocumentValidationResult) *models.SensitiveDocumentAssessment {
	assessment := &models.SensitiveDocumentAssessment{
		Category:      result.Category,
		RiskLevel:     models.RiskLow,
		SecurityFlags: securityFlags(result),
	}

	if !v.registry.IsSensitive(result.Category) {
		return assessment
	}

	if len(assessment.SecurityFlags) > 0 {
		assessment.RiskLevel = models.RiskHigh
		assessment.RequiresManualReview = true
	} else {
		assessment.RiskLevel = models.RiskMedium
	}
	return assessment
}

// securityFlags derives flags from the size and filename heuristics that
// already ran; the assessment never re-inspects the document itself.
func securityFlags(result *models.DocumentValidationResult) []string {
	flags := []string{}

	if matchPlaceholderKeyword(result.Filename) != "" {
		flags = append(flags, "placeholder_filename")
	}
	if result.ContentLength < SuspiciousBytes {
		flags = append(flags, "undersized_content")
	}
	for _, e := range result.Errors {
		if strings.Contains(e, "not expected for category") {
			flags = append(flags, "unexpected_extension")
			break
		}
	}
	return flags
}
