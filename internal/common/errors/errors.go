// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProductQueryFailed       ErrorCode = "PRODUCT_QUERY_FAILED"
	ErrCodeProductFetchFailed       ErrorCode = "PRODUCT_FETCH_FAILED"
	ErrCodeNoMatchingProducts       ErrorCode = "NO_MATCHING_PRODUCTS"
	ErrCodeChecklistCacheFailed     ErrorCode = "CHECKLIST_CACHE_FAILED"
	ErrCodeRequirementsPayloadEmpty ErrorCode = "REQUIREMENTS_PAYLOAD_EMPTY"

	ErrCodeDocumentDecodeFailed       ErrorCode = "DOCUMENT_DECODE_FAILED"
	ErrCodeDocumentValidationRejected ErrorCode = "DOCUMENT_VALIDATION_REJECTED"
	ErrCodeAuditIndexFailed           ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeRegistryLoadFailed       ErrorCode = "REGISTRY_LOAD_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewProductQueryFailedError creates a retryable database error.
func NewProductQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductQueryFailed,
		Message:   "Lender product query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductFetchFailedError creates a retryable staff-backend fetch error.
func NewProductFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductFetchFailed,
		Message:   "Lender product fetch from staff backend failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoMatchingProductsError creates a non-retryable business error.
func NewNoMatchingProductsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoMatchingProducts,
		Message:   "No lender products match the applicant",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChecklistCacheFailedError creates a retryable cache error.
func NewChecklistCacheFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChecklistCacheFailed,
		Message:   "Document checklist cache operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequirementsPayloadEmptyError creates a non-retryable payload error.
func NewRequirementsPayloadEmptyError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequirementsPayloadEmpty,
		Message:   "Status payload carries no recognizable requirements field",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentDecodeFailedError creates a non-retryable decode error.
func NewDocumentDecodeFailedError(fileName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentDecodeFailed,
		Message:   "Document payload is not valid base64",
		Details:   fmt.Sprintf("fileName: %s, error: %s", fileName, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentValidationRejectedError creates a non-retryable rejection.
func NewDocumentValidationRejectedError(fileName, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentValidationRejected,
		Message:   "Document rejected by heuristic validation",
		Details:   fmt.Sprintf("fileName: %s, status: %s", fileName, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit-index error.
func NewAuditIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Validation audit indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryLoadFailedError creates a non-retryable registry error.
func NewRegistryLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryLoadFailed,
		Message:   "Category registry load failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. They are
// identical by convention so process models can reference them directly.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProductQueryFailed:         "PRODUCT_QUERY_FAILED",
	ErrCodeProductFetchFailed:         "PRODUCT_FETCH_FAILED",
	ErrCodeNoMatchingProducts:         "NO_MATCHING_PRODUCTS",
	ErrCodeChecklistCacheFailed:       "CHECKLIST_CACHE_FAILED",
	ErrCodeRequirementsPayloadEmpty:   "REQUIREMENTS_PAYLOAD_EMPTY",
	ErrCodeDocumentDecodeFailed:       "DOCUMENT_DECODE_FAILED",
	ErrCodeDocumentValidationRejected: "DOCUMENT_VALIDATION_REJECTED",
	ErrCodeAuditIndexFailed:           "AUDIT_INDEX_FAILED",
	ErrCodeDatabaseConnectionFailed:   "DATABASE_CONNECTION_FAILED",
	ErrCodeRegistryLoadFailed:         "REGISTRY_LOAD_FAILED",
	ErrCodeNotificationSendFailed:     "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProductQueryFailed,
		ErrCodeProductFetchFailed,
		ErrCodeChecklistCacheFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeAuditIndexFailed:
		return 1 // Audit writes are best effort

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PRODUCT"):
		return "PRODUCTS"
	case strings.Contains(codeStr, "CHECKLIST") || strings.Contains(codeStr, "REQUIREMENTS"):
		return "REQUIREMENTS"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "AUDIT"):
		return "DOCUMENTS"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "REGISTRY"):
		return "REGISTRY"
	default:
		return "OTHER"
	}
}
