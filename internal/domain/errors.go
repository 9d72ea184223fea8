package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput    ErrorCode = "INVALID_INPUT"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Integration errors
	CodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	CodeTransport        ErrorCode = "TRANSPORT_ERROR"
	CodeRemoteFailure    ErrorCode = "REMOTE_FAILURE"
	CodeFormat           ErrorCode = "FORMAT_ERROR"
	CodeSubmission       ErrorCode = "SUBMISSION_ERROR"
	CodeRenderTimeout    ErrorCode = "RENDER_TIMEOUT"
	CodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail that is exposed in the HTTP error body.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether err (or anything it wraps) is a DomainError with code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost DomainError in err's chain.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Session not found with ID: %s", sessionID), nil)
}

// NewConfigurationError reports a feature that is disabled because its
// credential is missing.
func NewConfigurationError(feature string) *DomainError {
	return NewError(CodeConfiguration, fmt.Sprintf("%s is not configured", feature), nil).
		WithContext("feature", feature)
}

func NewTransportError(message string, err error) *DomainError {
	return NewError(CodeTransport, message, err)
}

// NewRemoteFailureError carries the reason string reported by a remote job.
func NewRemoteFailureError(service, reason string) *DomainError {
	return NewError(CodeRemoteFailure, fmt.Sprintf("%s reported failure: %s", service, reason), nil).
		WithContext("reason", reason)
}

func NewFormatError(message string, err error) *DomainError {
	return NewError(CodeFormat, message, err)
}

func NewSubmissionError(service string, err error) *DomainError {
	return NewError(CodeSubmission, fmt.Sprintf("failed to submit job to %s", service), err)
}

func NewRenderTimeoutError(jobID string, err error) *DomainError {
	return NewError(CodeRenderTimeout, fmt.Sprintf("render job %s did not finish in time", jobID), err).
		WithContext("job_id", jobID)
}

func NewExtractionError(message string, err error) *DomainError {
	return NewError(CodeExtractionFailed, message, err)
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by validators; the error handler renders it as
// a 400 with every field listed.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: "field has an invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value must be between %d and %d", min, max),
		Value:   value,
	}
}
