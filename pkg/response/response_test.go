package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestForbiddenEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Forbidden(rec, "Only clinicians can claim patients")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Only clinicians can claim patients", body.Message)
}

func TestDefaultMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "")
	assert.Equal(t, "Resource not found", decode(t, rec).Message)

	rec = httptest.NewRecorder()
	BadRequest(rec, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bad request", decode(t, rec).Message)
}

func TestTooManyRequestsSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	TooManyRequests(rec, 0)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 10, 21).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 0, 21).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 10, 0).TotalPages)
}
