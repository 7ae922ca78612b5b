// internal/workers/documents/notify-missing-documents/handler.go
package notifymissingdocuments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	commonaws "loandoc-workers/internal/common/aws"
	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/common/metrics"
	"loandoc-workers/internal/common/validation"
	"loandoc-workers/internal/models"
	"loandoc-workers/internal/requirements/aggregate"
	"loandoc-workers/pkg/registry"
)

const (
	TaskType = "notify-missing-documents"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrChecklistUnavailable   = errors.New("CHECKLIST_UNAVAILABLE")
)

type Handler struct {
	config    *Config
	store     aggregate.Store
	registry  *registry.CategoryRegistry
	logger    logger.Logger
	sesClient commonaws.SESService
	snsClient commonaws.SNSService
}

func NewHandler(config *Config, store aggregate.Store, reg *registry.CategoryRegistry, log logger.Logger) (*Handler, error) {
	if reg == nil {
		reg = registry.Default()
	}

	ctx := context.Background()
	sesClient, err := commonaws.NewSES(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNS(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SNS client: %w", err)
	}

	return &Handler{
		config:    config,
		store:     store,
		registry:  reg,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		} else if errors.Is(err, ErrChecklistUnavailable) {
			errorCode = "CHECKLIST_UNAVAILABLE"
			retries = 2
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	entries, err := h.store.Load(ctx, input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecklistUnavailable, err)
	}

	missing := missingDocuments(entries, input.UploadedDocuments)
	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	if len(missing) == 0 {
		h.logger.Info("checklist complete, no notification needed", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		return &Output{
			NotificationID:   notificationID,
			Status:           StatusComplete,
			MissingDocuments: []string{},
			SentAt:           sentAt,
		}, nil
	}

	subject, body := h.renderMessage(input.ApplicationID, missing)

	sent := false
	if h.config.EmailEnabled && input.RecipientEmail != "" {
		if !validation.ValidateEmail(input.RecipientEmail) {
			h.logger.Warn("skipping email, invalid recipient address", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
		} else {
			if err := h.sendEmail(ctx, input.RecipientEmail, subject, body); err != nil {
				return nil, fmt.Errorf("%w: email: %v", ErrNotificationSendFailed, err)
			}
			sent = true
		}
	}

	// SMS only for high priority reminders
	if h.config.SMSEnabled && input.RecipientPhone != "" && input.Priority == "high" {
		if !validation.ValidatePhone(input.RecipientPhone) {
			h.logger.Warn("skipping SMS, invalid recipient phone", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
		} else {
			if err := h.sendSMS(ctx, input.RecipientPhone, body); err != nil {
				return nil, fmt.Errorf("%w: sms: %v", ErrNotificationSendFailed, err)
			}
			sent = true
		}
	}

	status := StatusDisabled
	if sent {
		status = StatusSent
	}

	h.logger.Info("missing document reminder processed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"missingCount":  len(missing),
		"status":        status,
	})

	return &Output{
		NotificationID:   notificationID,
		Status:           status,
		MissingDocuments: missing,
		SentAt:           sentAt,
	}, nil
}

// missingDocuments returns the required document types not yet uploaded,
// preserving checklist order.
func missingDocuments(entries []models.RequirementEntry, uploaded []string) []string {
	uploadedSet := make(map[string]bool, len(uploaded))
	for _, doc := range uploaded {
		uploadedSet[strings.TrimSpace(doc)] = true
	}

	var missing []string
	for _, entry := range entries {
		if entry.Required && !uploadedSet[entry.DocumentType] {
			missing = append(missing, entry.DocumentType)
		}
	}
	return missing
}

func (h *Handler) renderMessage(applicationID string, missing []string) (string, string) {
	names := make([]string, 0, len(missing))
	for _, doc := range missing {
		if rule, ok := h.registry.RuleFor(doc); ok && rule.DisplayName != "" {
			names = append(names, rule.DisplayName)
			continue
		}
		names = append(names, doc)
	}

	subject := "Action needed: documents missing from your loan application"
	body := fmt.Sprintf(
		"Your application %s still needs the following documents before it can move forward:\n\n- %s\n\nPlease upload them at your earliest convenience.",
		applicationID, strings.Join(names, "\n- "),
	)
	return subject, body
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
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
