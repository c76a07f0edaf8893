package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidInput       ErrorType = "invalid_input"
	ErrorTypeUnsupportedContent ErrorType = "unsupported_content"
	ErrorTypeFetch              ErrorType = "fetch"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeEmptyExtraction    ErrorType = "empty_extraction"
	ErrorTypeAnalyzerBackend    ErrorType = "analyzer_backend"
	ErrorTypeRateLimited        ErrorType = "rate_limited"
	ErrorTypeStorageUnavailable ErrorType = "storage_unavailable"
	ErrorTypeDuplicateUpload    ErrorType = "duplicate_upload"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeInternal           ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches extra context shown to clients.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewInvalidInputError creates an error for malformed caller input
func NewInvalidInputError(message string, cause error) *AppError {
	return newError(ErrorTypeInvalidInput, http.StatusBadRequest, message, cause)
}

// NewUnsupportedContentError creates an error for content kinds with no analyzer
func NewUnsupportedContentError(message string, cause error) *AppError {
	return newError(ErrorTypeUnsupportedContent, http.StatusBadRequest, message, cause)
}

// NewFetchError creates an error for a failed remote resource fetch
func NewFetchError(message string, cause error) *AppError {
	return newError(ErrorTypeFetch, http.StatusInternalServerError, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewEmptyExtractionError creates an error for documents with no extractable text
func NewEmptyExtractionError(message string, cause error) *AppError {
	return newError(ErrorTypeEmptyExtraction, http.StatusUnprocessableEntity, message, cause)
}

// NewAnalyzerBackendError creates an error for a failed model backend call
func NewAnalyzerBackendError(message string, cause error) *AppError {
	return newError(ErrorTypeAnalyzerBackend, http.StatusInternalServerError, message, cause)
}

// NewRateLimitedError creates an error for summarization backend throttling
func NewRateLimitedError(message string, cause error) *AppError {
	return newError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, cause)
}

// NewStorageUnavailableError creates an error for unreachable persistence or object storage
func NewStorageUnavailableError(message string, cause error) *AppError {
	return newError(ErrorTypeStorageUnavailable, http.StatusServiceUnavailable, message, cause)
}

// NewDuplicateUploadError creates an error for a file that was already uploaded
func NewDuplicateUploadError(message string, cause error) *AppError {
	return newError(ErrorTypeDuplicateUpload, http.StatusConflict, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type, or internal for foreign errors
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
