// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookreview/internal/platform/apperr"
	"github.com/taibuivan/bookreview/internal/platform/respond"
)

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestCreated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Created(recorder, "Review saved", map[string]string{"id": "r-1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))

	body := decode(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Review saved", body["message"])
	assert.Equal(t, "r-1", body["data"].(map[string]any)["id"])
}

func TestList(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.List(recorder, 0, []string{})

	body := decode(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "count")
	assert.InDelta(t, 0.0, body["count"], 1e-9)
	assert.NotContains(t, body, "message")
}

/*
TestError maps application and foreign errors onto the error envelope.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "validation",
			err:        apperr.ValidationError("Validation failed", apperr.FieldError{Field: "rating", Message: "This field is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.CodeValidation,
			wantError:  "Validation failed",
		},
		{
			name:       "wrapped_transaction_failure",
			err:        errors.Join(errors.New("context"), apperr.TransactionFailure(errors.New("insert failed"))),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperr.CodeTransactionFailure,
			wantError:  "Failed to save review. Please try again.",
		},
		{
			name:       "foreign_error_is_hidden",
			err:        errors.New("pq: relation \"books\" does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperr.CodeInternal,
			wantError:  "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodPost, "/api/reviews", nil), tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			body := decode(t, recorder)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotContains(t, recorder.Body.String(), "insert failed")
		})
	}
}
