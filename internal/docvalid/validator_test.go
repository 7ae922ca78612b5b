package docvalid

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createValidator(t *testing.T) *Validator {
	return New(nil, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func content(size int) []byte {
	return bytes.Repeat([]byte("a"), size)
}

func encoded(size int) string {
	return base64.StdEncoding.EncodeToString(content(size))
}

// ==========================
// Heuristic Classification Tests
// ==========================

func TestValidateDocument_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		size       int
		category   string
		wantStatus models.ValidationStatus
		wantValid  bool
	}{
		{
			name:     "clean upload is authentic",
			fileName: "statement_january.pdf", size: 25000, category: "bank_statements",
			wantStatus: models.StatusAuthentic, wantValid: true,
		},
		{
			name:     "below hard floor is invalid",
			fileName: "statement.pdf", size: 3 * 1024, category: "bank_statements",
			wantStatus: models.StatusInvalid,
		},
		{
			name:     "exactly at the floor is not invalid",
			fileName: "ownership.pdf", size: 5120, category: "ownership_info",
			wantStatus: models.StatusSuspicious, // still under the 10240 suspicious line
		},
		{
			name:     "placeholder keyword in filename",
			fileName: "sample_statement.pdf", size: 80 * 1024, category: "bank_statements",
			wantStatus: models.StatusPlaceholder,
		},
		{
			name:     "keyword match is case-insensitive",
			fileName: "DRAFT_statement.pdf", size: 80 * 1024, category: "bank_statements",
			wantStatus: models.StatusPlaceholder,
		},
		{
			name:     "small but plausible is suspicious",
			fileName: "statement.pdf", size: 8 * 1024, category: "",
			wantStatus: models.StatusSuspicious,
		},
		{
			name:     "invalid outranks placeholder",
			fileName: "sample.pdf", size: 1024, category: "bank_statements",
			wantStatus: models.StatusInvalid,
		},
		{
			name:     "placeholder outranks suspicious size",
			fileName: "demo_statement.pdf", size: 8 * 1024, category: "",
			wantStatus: models.StatusPlaceholder,
		},
		{
			name:     "unknown category skips category rules",
			fileName: "whatever.xyz", size: 50000, category: "crystal_ball",
			wantStatus: models.StatusAuthentic, wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := createValidator(t)
			result, err := v.ValidateDocument(tt.fileName, encoded(tt.size), tt.category, "user-1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.ValidationStatus)
			assert.Equal(t, tt.wantValid, result.IsValid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestValidateDocument_CategoryRules(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		size       int
		category   string
		wantStatus models.ValidationStatus
	}{
		{
			name:     "wrong extension downgrades to suspicious",
			fileName: "statement.docx", size: 25000, category: "bank_statements",
			wantStatus: models.StatusSuspicious,
		},
		{
			name:     "below category floor downgrades to suspicious",
			fileName: "statement.pdf", size: 15000, category: "bank_statements",
			wantStatus: models.StatusSuspicious,
		},
		{
			name:     "csv allowed for bank statements",
			fileName: "statement.csv", size: 25000, category: "bank_statements",
			wantStatus: models.StatusAuthentic,
		},
		{
			name:     "category rule never overrides invalid",
			fileName: "statement.docx", size: 1024, category: "bank_statements",
			wantStatus: models.StatusInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := createValidator(t)
			result, err := v.ValidateDocument(tt.fileName, encoded(tt.size), tt.category, "")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.ValidationStatus)
		})
	}
}

func TestValidateDocument_Checksum(t *testing.T) {
	v := createValidator(t)
	payload := content(25000)
	sum := sha256.Sum256(payload)

	result, err := v.ValidateDocument("statement.pdf", base64.StdEncoding.EncodeToString(payload), "bank_statements", "")

	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.ChecksumSHA256)
	assert.Equal(t, len(payload), result.ContentLength)
	assert.Equal(t, ".pdf", result.Metadata["extension"])
}

func TestValidateDocument_DecodeError(t *testing.T) {
	v := createValidator(t)

	result, err := v.ValidateDocument("statement.pdf", "!!!not base64!!!", "bank_statements", "")

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestValidateDocument_EmptyPayload(t *testing.T) {
	v := createValidator(t)

	// Empty string decodes to zero bytes: structurally fine, heuristically invalid.
	result, err := v.ValidateDocument("statement.pdf", "", "bank_statements", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, result.ValidationStatus)
}

func TestValidateDocument_ErrorsAccumulate(t *testing.T) {
	v := createValidator(t)

	// Placeholder keyword, wrong extension, and below the category floor.
	result, err := v.ValidateDocument("sample.docx", encoded(15000), "bank_statements", "")

	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaceholder, result.ValidationStatus)
	assert.Len(t, result.Errors, 3)
}
