package errors

import (
	"fmt"
	"net/http"

	"icrelay/internal/models"
)

// User-facing messages reported back to the invoking channel
const (
	MsgEmptyInput       = "You did not provide a message."
	MsgChannelNotFound  = "Channel not found."
	MsgImageFetchFailed = "Failed to load the image."
	MsgInternalError    = "An error occurred while sending the message."
	MsgNotAThread       = "The specified channel is not a thread."
	MsgMissingArgument  = "Missing required arguments."
	MsgBadArgument      = "Invalid argument format."
	MsgCommandFailed    = "An error occurred while executing the command."
)

// NewEmptyInputError is returned before any channel lookup when no text was given
func NewEmptyInputError() *AppError {
	return New(ErrCodeEmptyInput, "no message text provided").
		WithUserMessage(MsgEmptyInput)
}

// NewChannelNotFoundError reports an unresolvable channel handle
func NewChannelNotFoundError(channelID string, err error) *AppError {
	return Wrap(err, ErrCodeChannelNotFound, "channel could not be resolved").
		WithContext("channel_id", channelID).
		WithUserMessage(MsgChannelNotFound)
}

// NewImageFetchError covers every fetch failure: status, network, size
func NewImageFetchError(url string, statusCode int, err error) *AppError {
	appErr := Wrap(err, ErrCodeImageFetchFailed, "image fetch failed").
		WithContext("url", url).
		WithUserMessage(MsgImageFetchFailed)
	if statusCode != 0 {
		appErr = appErr.WithContext("status_code", statusCode)
	}
	return appErr
}

// NewAdminMirrorError is logged only; the public send already succeeded
func NewAdminMirrorError(channelID string, err error) *AppError {
	return Wrap(err, ErrCodeAdminMirrorFailed, "admin mirror send failed").
		WithContext("channel_id", channelID)
}

// NewInternalError wraps any unexpected failure
func NewInternalError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeInternalError, fmt.Sprintf("%s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage(MsgInternalError)
}

// NewValidationError creates a validation error with field context
func NewValidationError(field, value, message string) *AppError {
	return New(ErrCodeInvalidInput, message).
		WithContext("field", field).
		WithContext("value", value).
		WithUserMessage(MsgBadArgument)
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Authentication failed")
}

// OutcomeFor maps an error to the relay outcome it terminates with
func OutcomeFor(err error) models.Outcome {
	if err == nil {
		return models.OutcomeDelivered
	}
	switch GetCode(err) {
	case ErrCodeEmptyInput:
		return models.OutcomeEmptyInput
	case ErrCodeChannelNotFound:
		return models.OutcomeNoChannel
	case ErrCodeImageFetchFailed:
		return models.OutcomeImageFetchFailed
	default:
		return models.OutcomeInternalError
	}
}

// HTTPStatusCode maps error codes to appropriate HTTP status codes.
// The ingress contract reports every relay failure as a 500.
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the ingress error body
type HTTPErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ToHTTPResponse converts an error to the ingress response shape
func ToHTTPResponse(err error) HTTPErrorResponse {
	return HTTPErrorResponse{
		Status:  "error",
		Message: GetUserMessage(err),
		Code:    string(GetCode(err)),
	}
}
