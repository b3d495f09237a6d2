package models

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemWrite(t *testing.T) {
	p := NewBadRequest("trace-123", "invalid trip payload", []FieldError{
		{Field: "title", Message: "title is required", Code: "required"},
	})

	rec := httptest.NewRecorder()
	p.Write(rec)

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))

	var decoded Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, ProblemTypeValidation, decoded.Type)
	assert.Equal(t, "Validation error", decoded.Title)
	assert.Equal(t, "invalid trip payload", decoded.Detail)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "title", decoded.Errors[0].Field)
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name     string
		problem  *Problem
		status   int
		ptype    string
	}{
		{"unauthorized", NewUnauthorized("t", "missing token"), 401, ProblemTypeUnauthorized},
		{"forbidden", NewForbidden("t", "not your trip"), 403, ProblemTypeForbidden},
		{"not found", NewNotFound("t", "trip not found"), 404, ProblemTypeNotFound},
		{"conflict", NewConflict("t", "version conflict"), 409, ProblemTypeConflict},
		{"too many requests", NewTooManyRequests("t", "slow down"), 429, ProblemTypeTooManyRequests},
		{"internal", NewInternalError("t", "boom"), 500, ProblemTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, tt.ptype, tt.problem.Type)
			assert.Equal(t, "t", tt.problem.TraceID)
		})
	}
}
