package errors

import (
	"errors"
	"net/http"
	"testing"

	"icrelay/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected models.Outcome
	}{
		{"nil", nil, models.OutcomeDelivered},
		{"empty input", NewEmptyInputError(), models.OutcomeEmptyInput},
		{"no channel", NewChannelNotFoundError("1", nil), models.OutcomeNoChannel},
		{"fetch", NewImageFetchError("u", 404, nil), models.OutcomeImageFetchFailed},
		{"internal", NewInternalError("send", errors.New("x")), models.OutcomeInternalError},
		{"plain", errors.New("x"), models.OutcomeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutcomeFor(tt.err))
		})
	}
}

func TestNewImageFetchError_Context(t *testing.T) {
	err := NewImageFetchError("https://i.example/a.png", 404, nil)
	assert.Equal(t, 404, err.Context["status_code"])
	assert.Equal(t, "https://i.example/a.png", err.Context["url"])

	err = NewImageFetchError("https://i.example/a.png", 0, errors.New("timeout"))
	_, has := err.Context["status_code"]
	assert.False(t, has)
}

func TestHTTPStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(NewChannelNotFoundError("1", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(errors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusCode(NewValidationError("f", "v", "bad")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatusCode(NewAuthError("missing signature")))
}

func TestToHTTPResponse(t *testing.T) {
	resp := ToHTTPResponse(NewChannelNotFoundError("1", nil))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, MsgChannelNotFound, resp.Message)
	assert.Equal(t, "CHANNEL_NOT_FOUND", resp.Code)

	resp = ToHTTPResponse(errors.New("boom"))
	assert.Equal(t, MsgInternalError, resp.Message)
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
}
