package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeEmptyInput,
				Message: "no message text provided",
			},
			expected: "EMPTY_INPUT: no message text provided",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeImageFetchFailed,
				Message: "image fetch failed",
				Cause:   errors.New("connection refused"),
			},
			expected: "IMAGE_FETCH_FAILED: image fetch failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternalError, "something went wrong")

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("relay: %w", NewChannelNotFoundError("123", nil))

	assert.True(t, errors.Is(err, New(ErrCodeChannelNotFound, "")))
	assert.False(t, errors.Is(err, New(ErrCodeEmptyInput, "")))
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrCodeInvalidInput, "validation failed")

	result := err.WithContext("field", "sides").WithContext("value", "abc")

	assert.Same(t, err, result)
	assert.Len(t, err.Context, 2)
	assert.Equal(t, "sides", err.Context["field"])
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeImageFetchFailed, GetCode(NewImageFetchError("https://x/y.png", 404, nil)))
	assert.Equal(t, ErrCodeEmptyInput, GetCode(fmt.Errorf("wrapped: %w", NewEmptyInputError())))
	assert.Equal(t, ErrCodeInternalError, GetCode(errors.New("plain")))
}

func TestGetUserMessage(t *testing.T) {
	assert.Equal(t, MsgEmptyInput, GetUserMessage(NewEmptyInputError()))
	assert.Equal(t, MsgChannelNotFound, GetUserMessage(NewChannelNotFoundError("1", nil)))
	assert.Equal(t, MsgImageFetchFailed, GetUserMessage(NewImageFetchError("u", 0, errors.New("dns"))))
	assert.Equal(t, MsgInternalError, GetUserMessage(errors.New("boom")))
	// mirror failures carry no user message
	assert.Equal(t, MsgInternalError, GetUserMessage(NewAdminMirrorError("1", errors.New("x"))))
}
