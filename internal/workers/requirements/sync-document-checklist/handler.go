// internal/workers/requirements/sync-document-checklist/handler.go
package syncdocumentchecklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/common/metrics"
	"loandoc-workers/internal/models"
	"loandoc-workers/internal/requirements/aggregate"
)

const (
	TaskType = "sync-document-checklist"
)

var (
	ErrChecklistCacheFailed     = errors.New("CHECKLIST_CACHE_FAILED")
	ErrMissingApplicationID     = errors.New("MISSING_APPLICATION_ID")
	ErrRequirementsPayloadEmpty = errors.New("REQUIREMENTS_PAYLOAD_EMPTY")
)

type Handler struct {
	config     *Config
	aggregator *aggregate.Aggregator
	logger     logger.Logger
}

func NewHandler(config *Config, aggregator *aggregate.Aggregator, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		aggregator: aggregator,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "CHECKLIST_CACHE_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrChecklistCacheFailed) {
			retries = 3
		} else if errors.Is(err, ErrMissingApplicationID) {
			errorCode = "MISSING_APPLICATION_ID"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	outcome := "skipped"
	if output.Synced {
		outcome = "synced"
	}
	metrics.ChecklistSyncs.WithLabelValues(outcome).Inc()

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.ApplicationID == "" {
		return nil, ErrMissingApplicationID
	}

	status := models.ApplicationStatus{
		ApplicationID: input.ApplicationID,
		Status:        input.Status,
		Payload:       input.Payload,
	}

	entries, err := h.aggregator.SyncFromStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecklistCacheFailed, err)
	}

	// A payload with no recognizable requirements field is a no-op, not an
	// error: the cached checklist stays as it was.
	if entries == nil {
		return &Output{
			ApplicationID: input.ApplicationID,
			Synced:        false,
		}, nil
	}

	return &Output{
		ApplicationID: input.ApplicationID,
		Synced:        true,
		DocumentCount: len(entries),
		Documents:     entries,
	}, nil
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
