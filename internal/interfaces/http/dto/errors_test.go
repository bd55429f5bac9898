package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInvalidReportType, http.StatusBadRequest},
		{ErrCodeInvalidExportType, http.StatusBadRequest},
		{ErrCodeInvalidRange, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotImplemented, http.StatusNotImplemented},
		{ErrCodeStoreUnavailable, http.StatusInternalServerError},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidReportType, NormalizeErrorCode("INVALID_REPORT_TYPE"))
	assert.Equal(t, ErrCodeNotImplemented, NormalizeErrorCode("NOT_IMPLEMENTED"))
	assert.Equal(t, ErrCodeInternal, NormalizeErrorCode(ErrCodeInternal))
	assert.Equal(t, "CUSTOM", NormalizeErrorCode("CUSTOM"))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("INVALID_REPORT_TYPE", "Invalid report type")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "Invalid report type", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidReportType, resp.Error.Code)
	assert.Equal(t, "Invalid report type", resp.Error.Message)
	assert.Empty(t, resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "type", Message: "This field is required"}}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Equal(t, details, resp.Error.Details)
}

func TestResponseJSON(t *testing.T) {
	t.Run("success omits error fields", func(t *testing.T) {
		data, err := json.Marshal(NewSuccessResponse(map[string]int{"total": 3}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":{"total":3}}`, string(data))
	})

	t.Run("error carries message and request id", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeNotImplemented, "CSV export is not implemented yet", "req-1"))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"success": false,
			"message": "CSV export is not implemented yet",
			"error": {"code": "ERR_NOT_IMPLEMENTED", "message": "CSV export is not implemented yet", "request_id": "req-1"}
		}`, string(data))
	})
}
