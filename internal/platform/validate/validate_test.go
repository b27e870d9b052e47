// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookreview/internal/platform/apperr"
	"github.com/taibuivan/bookreview/internal/platform/validate"
)

func ptr(f float64) *float64 { return &f }

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "bookTitle", "Dune", false},
		{"empty_string", "bookTitle", "", true},
		{"whitespace_only", "bookTitle", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Score checks presence, integrality and range of a JSON score.
*/
func TestValidator_Score(t *testing.T) {
	tests := []struct {
		name    string
		value   *float64
		message string
	}{
		{"lower_bound", ptr(1), ""},
		{"upper_bound", ptr(5), ""},
		{"missing", nil, "This field is required"},
		{"zero", ptr(0), "Must be between 1 and 5"},
		{"above_scale", ptr(6), "Must be between 1 and 5"},
		{"fractional", ptr(4.5), "Must be a whole number"},
		{"not_a_number", ptr(math.NaN()), "Must be a whole number"},
		{"huge", ptr(1e300), "Must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Score("rating", tt.value, 1, 5).Err()

			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, "rating", ae.Details[0].Field)
			assert.Equal(t, tt.message, ae.Details[0].Message)
		})
	}
}

func TestValidator_UUID(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.UUID("id", "0192f0c1-7d3e-7c4a-9a51-3b2d1f0e9c88").Err())

	v = &validate.Validator{}
	assert.Error(t, v.UUID("id", "not-a-uuid").Err())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("bookTitle", "").      // Fails
		Required("author", "Herbert").  // Passes
		Required("reviewText", "   ").  // Fails
		Score("rating", nil, 1, 5).     // Fails
		MaxLen("author", "Herbert", 3). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 4 errors
	assert.Len(t, ae.Details, 4)
}
