// internal/audit/indexer.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

// Indexer writes document validation outcomes into Elasticsearch for audit
// and compliance review. Indexing is best-effort: validation itself never
// waits on or fails because of the audit trail.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewIndexer returns an Indexer, or nil when no client is configured. A nil
// Indexer is safe to call; every method is a no-op.
func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if client == nil {
		return nil
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit-indexer"}),
	}
}

type validationRecord struct {
	RecordID      string    `json:"recordId"`
	Filename      string    `json:"filename"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	IsValid       bool      `json:"isValid"`
	ContentLength int       `json:"contentLength"`
	Checksum      string    `json:"checksumSHA256"`
	Errors        []string  `json:"errors,omitempty"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	ValidatedAt   time.Time `json:"validatedAt"`
	ValidationMs  int64     `json:"validationMs"`
}

// IndexValidation records one validation result. Errors are logged, not
// returned, so callers can fire-and-forget.
func (i *Indexer) IndexValidation(ctx context.Context, result *models.DocumentValidationResult, durationMs int64) {
	if i == nil || result == nil {
		return
	}

	record := validationRecord{
		RecordID:      uuid.NewString(),
		Filename:      result.Filename,
		Category:      result.Category,
		Status:        string(result.ValidationStatus),
		IsValid:       result.IsValid,
		ContentLength: result.ContentLength,
		Checksum:      result.ChecksumSHA256,
		Errors:        result.Errors,
		UploadedBy:    result.UploadedBy,
		ValidatedAt:   result.ValidatedAt,
		ValidationMs:  durationMs,
	}

	if err := i.indexRecord(ctx, record); err != nil {
		i.logger.WithError(err).Warn("failed to index validation record", map[string]interface{}{
			"filename": result.Filename,
			"status":   result.ValidationStatus,
		})
	}
}

func (i *Indexer) indexRecord(ctx context.Context, record validationRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal validation record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.RecordID,
		Body:       bytes.NewReader(body),
	}

	resp, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index validation record: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("elasticsearch returned %s for record %s", resp.Status(), record.RecordID)
	}
	return nil
}
