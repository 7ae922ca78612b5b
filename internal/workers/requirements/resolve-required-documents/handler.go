// internal/workers/requirements/resolve-required-documents/handler.go
package resolverequireddocuments

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
	"loandoc-workers/internal/requirements/match"
)

const (
	TaskType = "resolve-required-documents"
)

var (
	ErrProductQueryFailed  = errors.New("PRODUCT_QUERY_FAILED")
	ErrNoMatchingProducts  = errors.New("NO_MATCHING_PRODUCTS")
	ErrInvalidLoanAmount   = errors.New("INVALID_LOAN_AMOUNT")
	ErrChecklistBuildError = errors.New("CHECKLIST_BUILD_FAILED")
)

// ProductSource yields the lender product catalogue. The PostgreSQL
// repository is the primary source; the staff backend client can serve as a
// fallback behind the same interface.
type ProductSource interface {
	ListActive(ctx context.Context) ([]models.LenderProduct, error)
}

type Handler struct {
	config     *Config
	products   ProductSource
	aggregator *aggregate.Aggregator
	logger     logger.Logger
}

func NewHandler(config *Config, products ProductSource, aggregator *aggregate.Aggregator, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		products:   products,
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
		errorCode := "CHECKLIST_BUILD_FAILED"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrProductQueryFailed):
			errorCode = "PRODUCT_QUERY_FAILED"
			retries = 3
		case errors.Is(err, ErrNoMatchingProducts):
			errorCode = "NO_MATCHING_PRODUCTS"
		case errors.Is(err, ErrInvalidLoanAmount):
			errorCode = "INVALID_LOAN_AMOUNT"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.ChecklistsResolved.WithLabelValues(input.SelectedCategory).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.AmountRequested <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLoanAmount, input.AmountRequested)
	}

	catalogue, err := h.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductQueryFailed, err)
	}

	matching := match.FilterProductsForApplicant(catalogue, input.ApplicantCountry, input.AmountRequested)
	if len(matching) == 0 {
		return nil, fmt.Errorf("%w: country=%s amount=%v",
			ErrNoMatchingProducts, match.NormalizeCountryCode(input.ApplicantCountry), input.AmountRequested)
	}

	lenders := match.GroupProductsByLender(matching)
	categories := match.BuildCategorySummaries(catalogue, input.AmountRequested)
	required := h.aggregator.AggregateRequiredDocuments(matching, input.SelectedCategory, input.AmountRequested)

	// Best effort: the process variables carry the checklist either way.
	if input.ApplicationID != "" && len(required) > 0 {
		if err := h.aggregator.SaveChecklist(ctx, input.ApplicationID, required); err != nil {
			h.logger.Warn("failed to cache resolved checklist", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err.Error(),
			})
		}
	}

	h.logger.Info("checklist resolved", map[string]interface{}{
		"applicationId":    input.ApplicationID,
		"matchingProducts": len(matching),
		"lenders":          len(lenders),
		"documents":        len(required),
	})

	return &Output{
		ApplicationID:     input.ApplicationID,
		MatchingProducts:  len(matching),
		Lenders:           lenders,
		Categories:        categories,
		RequiredDocuments: required,
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
