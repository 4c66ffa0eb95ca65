package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleItem struct {
	MetricID string `json:"metricId" validate:"required"`
	Score    *int   `json:"score" validate:"omitempty,min=1,max=5"`
}

type samplePayload struct {
	Scores []sampleItem `json:"scores" validate:"required,min=1,dive"`
}

func TestValidatorStructReportsJSONFieldNames(t *testing.T) {
	six := 6
	v := NewValidator()
	v.Struct(samplePayload{Scores: []sampleItem{{MetricID: "", Score: &six}}})

	require.True(t, v.HasIssues())
	assert.Equal(t, []ValidationIssue{
		{Field: "scores[0].metricId", Reason: "is required"},
		{Field: "scores[0].score", Reason: "must be at most 5"},
	}, v.Issues())
}

func TestValidatorStructAcceptsValidPayload(t *testing.T) {
	four := 4
	v := NewValidator()
	v.Struct(samplePayload{Scores: []sampleItem{{MetricID: "K1", Score: &four}, {MetricID: "K2"}}})
	assert.False(t, v.HasIssues())
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("note", " ", "is required")

	rec := httptest.NewRecorder()
	require.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, []ValidationIssue{{Field: "note", Reason: "is required"}}, body.Error.Details.Fields)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	assert.Equal(t, "10.0.0.5", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}
