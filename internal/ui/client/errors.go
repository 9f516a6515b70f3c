package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/information-sharing-networks/shortener-ui/internal/apperrors"
)

// InvalidResponseMessage is shown when the backend answers 2xx with a body that does not have the expected shape
const InvalidResponseMessage = "Invalid response from backend"

// maximum number of bytes of an error body that are reported
const maxErrorBodySize = 4096

// ClientError represents an error encountered by a ui action.
// StatusCode 0 = no HTTP status available (validation, network or decoding errors), >0 = HTTP response received
type ClientError struct {
	Kind        apperrors.ErrorKind `json:"kind"`
	StatusCode  int                 `json:"status_code"`
	UserMessage string              `json:"user_message"`
	LogMessage  string              `json:"log_message"`
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

// UserError returns the message for the status display
func (e *ClientError) UserError() string {
	return e.UserMessage
}

// UserMessage returns the status display text for any error returned by a ui action
func UserMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.UserError()
	}
	return err.Error()
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		Kind:        apperrors.ErrKindTransport,
		StatusCode:  0,
		UserMessage: "Unable to connect to the shortener service. Please try again.",
		LogMessage:  fmt.Sprintf("network error: %v", err),
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		Kind:        apperrors.ErrKindInternal,
		StatusCode:  0,
		UserMessage: "An error occurred. Please try again later.",
		LogMessage:  fmt.Sprintf("internal error: %v while %v", err, while),
	}
}

// NewClientValidationError creates a ClientError for input rejected before any request was made
func NewClientValidationError(msg string, err error) *ClientError {
	logMsg := fmt.Sprintf("validation error: %s", msg)
	if err != nil {
		logMsg = fmt.Sprintf("validation error: %s: %v", msg, err)
	}
	return &ClientError{
		Kind:        apperrors.ErrKindValidation,
		UserMessage: msg,
		LogMessage:  logMsg,
	}
}

// NewClientInvalidResponseError creates a ClientError for a successful response whose body could not be used
func NewClientInvalidResponseError(status int, err error, while string) *ClientError {
	return &ClientError{
		Kind:        apperrors.ErrKindInvalidResponse,
		StatusCode:  status,
		UserMessage: InvalidResponseMessage,
		LogMessage:  fmt.Sprintf("invalid response (status %d): %v while %v", status, err, while),
	}
}

// NewClientApiError creates a ClientError from a non-2xx response.
// The backend's error text is shown to the user. The text is either the plain body (http.Error) or the message field of a JSON error body.
// When the backend sends no text a message is chosen from the status code.
func NewClientApiError(res *http.Response) *ClientError {
	var text string
	if res.Body != nil {
		data, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
		text = strings.TrimSpace(string(data))
	}

	var serverErr struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &serverErr) == nil && serverErr.Message != "" {
		text = serverErr.Message
	}

	userMsg := text
	if userMsg == "" {
		switch res.StatusCode {
		case http.StatusNotFound:
			userMsg = "Not found."
		case http.StatusBadRequest:
			userMsg = "Invalid request. Please check your input and try again."
		case http.StatusTooManyRequests:
			userMsg = "Too many requests. Please try again in a few moments."
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			userMsg = "The service is temporarily unavailable. Please try again later."
		default:
			userMsg = "An error occurred. Please try again."
		}
	}

	logMsg := fmt.Sprintf("shortener status %d", res.StatusCode)
	if text != "" {
		logMsg += fmt.Sprintf(" - %s", text)
	}

	return &ClientError{
		Kind:        apperrors.ErrKindBackend,
		StatusCode:  res.StatusCode,
		UserMessage: userMsg,
		LogMessage:  logMsg,
	}
}
