package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadPartialFailure_CarriesUnwrittenIDs(t *testing.T) {
	cause := stderrors.New("throttled")
	err := fmt.Errorf("load run: %w", NewLoadPartialFailureError([]string{"0001", "0002"}, cause))

	assert.True(t, IsLoadPartialFailure(err))
	assert.Equal(t, []string{"0001", "0002"}, UnwrittenPaperIDs(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, UnwrittenPaperIDs(NewInternalError("boom")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewStoreUnavailableError("query", context.DeadlineExceeded)))
	assert.False(t, IsRetryable(NewMissingRequiredFieldError("arxiv_id")))
	assert.False(t, IsRetryable(NewInvalidQueryParameterError("category", "is required")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"invalid parameter", NewInvalidQueryParameterError("category", "is required"), http.StatusBadRequest, "INVALID_QUERY_PARAMETER"},
		{"not found", NewNotFoundError("paper"), http.StatusNotFound, "NOT_FOUND"},
		{"store unavailable", NewStoreUnavailableError("query", nil), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"generic", stderrors.New("unexpected"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/papers/recent", nil)

			h.Handle(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.typ, body.Type)
		})
	}
}

func TestErrorHandler_DebugAndPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/papers/recent", nil), stderrors.New("unexpected"))
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unexpected", body.Message)
	assert.Contains(t, body.Details, "stack_trace")

	panicking := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec = httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/papers/recent", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: boom")

	rec = httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "route not found")
}
