// Package errors provides the standardized error kinds of the responder.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Resolution errors
const (
	ErrCodeLowConfidenceIntent   ErrorCode = "LOW_CONFIDENCE_INTENT"
	ErrCodeStoreLookupFailed     ErrorCode = "STORE_LOOKUP_FAILED"
	ErrCodeIntentNotFound        ErrorCode = "INTENT_NOT_FOUND"
	ErrCodeMalformedIntentRecord ErrorCode = "MALFORMED_INTENT_RECORD"
	ErrCodeAmbiguousEntityMatch  ErrorCode = "AMBIGUOUS_ENTITY_MATCH"
	ErrCodeMissingFallbackAnswer ErrorCode = "MISSING_FALLBACK_ANSWER"
)

// Transport and integration errors
const (
	ErrCodeInvalidPayload     ErrorCode = "INVALID_PAYLOAD"
	ErrCodeSignatureInvalid   ErrorCode = "SIGNATURE_INVALID"
	ErrCodeMessageSendFailed  ErrorCode = "MESSAGE_SEND_FAILED"
	ErrCodeAlertPublishFailed ErrorCode = "ALERT_PUBLISH_FAILED"
	ErrCodeAuditIndexFailed   ErrorCode = "AUDIT_INDEX_FAILED"
	ErrCodeIntentTableInvalid ErrorCode = "INTENT_TABLE_INVALID"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so sentinels work with errors.Is.
func (e *StandardError) Is(target error) bool {
	var t *StandardError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// Sentinels for errors.Is checks.
var (
	ErrIntentNotFound        = &StandardError{Code: ErrCodeIntentNotFound}
	ErrMalformedIntentRecord = &StandardError{Code: ErrCodeMalformedIntentRecord}
	ErrMissingFallbackAnswer = &StandardError{Code: ErrCodeMissingFallbackAnswer}
	ErrMessageSendFailed     = &StandardError{Code: ErrCodeMessageSendFailed}
	ErrInvalidPayload        = &StandardError{Code: ErrCodeInvalidPayload}
)

func NewLowConfidenceIntentError(details string) *StandardError {
	return newError(ErrCodeLowConfidenceIntent, "Intent missing or below confidence threshold", details, false, nil)
}

// NewStoreLookupFailedError wraps a transient store failure (network, throttling, timeout).
func NewStoreLookupFailedError(backend string, err error) *StandardError {
	return newError(ErrCodeStoreLookupFailed, "Intent store lookup failed",
		fmt.Sprintf("backend: %s, error: %v", backend, err), true, err)
}

func NewIntentNotFoundError(intent string) *StandardError {
	return newError(ErrCodeIntentNotFound, "Intent not found in store",
		fmt.Sprintf("intent: %s", intent), false, nil)
}

func NewMalformedIntentRecordError(intent, details string) *StandardError {
	return newError(ErrCodeMalformedIntentRecord, "Intent record has an unexpected shape",
		fmt.Sprintf("intent: %s, %s", intent, details), false, nil)
}

func NewAmbiguousEntityMatchError(intent string, matched []string) *StandardError {
	return newError(ErrCodeAmbiguousEntityMatch, "Expected exactly one dispatch entity",
		fmt.Sprintf("intent: %s, matched: %v", intent, matched), false, nil)
}

// NewMissingFallbackAnswerError flags an entity dispatch table without an Other entry.
func NewMissingFallbackAnswerError(intent, entity string) *StandardError {
	return newError(ErrCodeMissingFallbackAnswer, "Entity dispatch has no fallback answer",
		fmt.Sprintf("intent: %s, entity: %s", intent, entity), false, nil).
		WithMetadata("intent", intent).
		WithMetadata("entity", entity)
}

func NewInvalidPayloadError(details string) *StandardError {
	return newError(ErrCodeInvalidPayload, "Webhook payload is invalid", details, false, nil)
}

func NewSignatureInvalidError(details string) *StandardError {
	return newError(ErrCodeSignatureInvalid, "Webhook signature verification failed", details, false, nil)
}

func NewMessageSendFailedError(status int, err error, retryable bool) *StandardError {
	return newError(ErrCodeMessageSendFailed, "Send API request failed",
		fmt.Sprintf("status: %d, error: %v", status, err), retryable, err).
		WithMetadata("status", status)
}

func NewAlertPublishFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeAlertPublishFailed, "Operator alert could not be published",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true, err)
}

func NewAuditIndexFailedError(err error) *StandardError {
	return newError(ErrCodeAuditIndexFailed, "Interaction audit indexing failed", err.Error(), true, err)
}

func NewIntentTableInvalidError(details string) *StandardError {
	return newError(ErrCodeIntentTableInvalid, "Intent table failed validation", details, false, nil)
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// CodeOf returns the code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Code
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &StandardError{Code: code})
}

// IsRetryableErrorCode reports whether an operation failing with code may succeed on retry.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeStoreLookupFailed, ErrCodeMessageSendFailed, ErrCodeAlertPublishFailed, ErrCodeAuditIndexFailed:
		return true
	}
	return false
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeLowConfidenceIntent, ErrCodeAmbiguousEntityMatch:
		return "conversational"
	case ErrCodeStoreLookupFailed, ErrCodeIntentNotFound:
		return "store"
	case ErrCodeMalformedIntentRecord, ErrCodeMissingFallbackAnswer, ErrCodeIntentTableInvalid:
		return "configuration"
	case ErrCodeInvalidPayload, ErrCodeSignatureInvalid:
		return "request"
	case ErrCodeMessageSendFailed, ErrCodeAlertPublishFailed, ErrCodeAuditIndexFailed:
		return "integration"
	default:
		return "internal"
	}
}
