package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"invalid input", NewInvalidInputError("bad url", nil), ErrorTypeInvalidInput, http.StatusBadRequest},
		{"unsupported", NewUnsupportedContentError("Unsupported link content", nil), ErrorTypeUnsupportedContent, http.StatusBadRequest},
		{"fetch", NewFetchError("boom", nil), ErrorTypeFetch, http.StatusInternalServerError},
		{"timeout", NewTimeoutError("slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"empty extraction", NewEmptyExtractionError("no text", nil), ErrorTypeEmptyExtraction, http.StatusUnprocessableEntity},
		{"backend", NewAnalyzerBackendError("model", nil), ErrorTypeAnalyzerBackend, http.StatusInternalServerError},
		{"rate limited", NewRateLimitedError("slow down", nil), ErrorTypeRateLimited, http.StatusTooManyRequests},
		{"storage", NewStorageUnavailableError("db down", nil), ErrorTypeStorageUnavailable, http.StatusServiceUnavailable},
		{"duplicate", NewDuplicateUploadError("again", nil), ErrorTypeDuplicateUpload, http.StatusConflict},
		{"not found", NewNotFoundError("nothing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("oops", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
		})
	}
}

func TestWrappedAppErrorIsFound(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewFetchError("failed to fetch resource", cause)
	wrapped := fmt.Errorf("analyze: %w", appErr)

	assert.True(t, IsType(wrapped, ErrorTypeFetch))
	assert.False(t, IsType(wrapped, ErrorTypeTimeout))
	assert.Equal(t, ErrorTypeFetch, TypeOf(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, appErr.Error(), "caused by: connection refused")
}

func TestForeignErrorDefaults(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, ErrorTypeInternal, TypeOf(err))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
	assert.False(t, IsType(err, ErrorTypeInternal))
}
