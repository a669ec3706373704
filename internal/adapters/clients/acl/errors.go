package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// ErrorResponse is the error body a downstream may send. Both the nested
// {"error":{"code","message"}} shape and the flat {"code","message"} shape
// are accepted.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// GetCode prefers the nested code.
func (e *ErrorResponse) GetCode() string {
	return cmpOr(e.Error.Code, e.Code)
}

// GetMessage prefers the nested message.
func (e *ErrorResponse) GetMessage() string {
	return cmpOr(e.Error.Message, e.Message)
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}

	return b
}

// ParseErrorResponse decodes body, returning nil when it is empty,
// malformed, or carries neither a code nor a message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var resp ErrorResponse
	if json.NewDecoder(body).Decode(&resp) != nil || (resp.GetCode() == "" && resp.GetMessage() == "") {
		return nil
	}

	return &resp
}

// MapHTTPError turns a failed feed exchange into a domain error. resp may be
// nil when clientErr is set. 404 maps to ErrNotFound, 400 and 422 to
// ErrValidation, and everything else (auth, rate limiting, 5xx) to
// ErrUnavailable.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	switch {
	case clientErr != nil:
		return mapClientError(clientErr, serviceName, operation)
	case resp == nil:
		return domain.NewUnavailableError(serviceName, "no response received")
	case resp.StatusCode < http.StatusMultipleChoices:
		return nil
	}

	var body *ErrorResponse
	if resp.Body != nil {
		body = ParseErrorResponse(resp.Body)
	}

	message := statusMessage(resp.StatusCode, operation)
	if body != nil && body.GetMessage() != "" {
		message = body.GetMessage()
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.NewNotFoundError(serviceName+" resource", operation)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if body != nil {
			for field, msg := range body.Error.Details {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}

func mapClientError(err error, serviceName, operation string) error {
	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = "max retries exceeded during " + operation
	default:
		reason = fmt.Sprintf("%s failed: %v", operation, err)
	}

	return domain.NewUnavailableError(serviceName, reason)
}

var statusMessages = map[int]string{
	http.StatusBadRequest:         "invalid request",
	http.StatusUnauthorized:       "authentication required",
	http.StatusForbidden:          "access denied",
	http.StatusNotFound:           "resource not found",
	http.StatusConflict:           "resource conflict",
	http.StatusTooManyRequests:    "rate limit exceeded",
	http.StatusServiceUnavailable: "service temporarily unavailable",
}

func statusMessage(status int, operation string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}

	return fmt.Sprintf("%s failed with status %d", operation, status)
}
