// internal/workers/documents/validate-document/handler.go
package validatedocument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loandoc-workers/internal/audit"
	apperrors "loandoc-workers/internal/common/errors"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/common/metrics"
	"loandoc-workers/internal/docvalid"
	"loandoc-workers/internal/models"
)

const (
	TaskType = "validate-document"
)

var (
	ErrDocumentDecodeFailed       = errors.New("DOCUMENT_DECODE_FAILED")
	ErrDocumentValidationRejected = errors.New("DOCUMENT_VALIDATION_REJECTED")
	ErrMissingDocumentData        = errors.New("MISSING_DOCUMENT_DATA")
)

type Handler struct {
	config     *Config
	validator  *docvalid.Validator
	auditor    *audit.Indexer
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the worker. auditor may be nil when no Elasticsearch
// cluster is configured.
func NewHandler(config *Config, validator *docvalid.Validator, auditor *audit.Indexer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		validator:  validator,
		auditor:    auditor,
		logger:     scoped,
		errHandler: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrDocumentDecodeFailed) {
			h.errHandler.HandleJobError(ctx, client, job,
				apperrors.NewDocumentDecodeFailedError(input.FileName, err))
			return
		}
		errorCode := "MISSING_DOCUMENT_DATA"
		if !errors.Is(err, ErrMissingDocumentData) {
			errorCode = "VALIDATION_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	metrics.DocumentsValidated.WithLabelValues(string(output.Result.ValidationStatus), input.Category).Inc()

	// Rejected uploads stop the process at a BPMN error boundary; the
	// applicant is asked to re-upload. Suspicious documents pass through
	// flagged for manual review instead.
	if output.Result.ValidationStatus.Severity() >= 2 {
		h.failJob(client, job, "DOCUMENT_VALIDATION_REJECTED",
			fmt.Sprintf("document %s rejected as %s: %v",
				input.FileName, output.Result.ValidationStatus, output.Result.Errors), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.FileData == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingDocumentData, input.FileName)
	}

	start := time.Now()
	result, err := h.validator.ValidateDocument(input.FileName, input.FileData, input.Category, input.UploadedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentDecodeFailed, err)
	}

	output := &Output{
		ApplicationID: input.ApplicationID,
		Result:        result,
	}
	if assessment := h.validator.ValidateSensitiveDocument(result); assessment.RiskLevel != models.RiskLow {
		output.Assessment = assessment
	}

	h.auditor.IndexValidation(ctx, result, time.Since(start).Milliseconds())

	h.logger.Info("document validated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"filename":      input.FileName,
		"category":      input.Category,
		"status":        result.ValidationStatus,
		"isValid":       result.IsValid,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
