package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/placement-portal/internal/types"
)

// APIError is a non-2xx response from the portal API.
type APIError struct {
	StatusCode int
	// Message is the body's "error" value, if any.
	Message string
	// Errors is the body's "errors" list. It is nil when the key is absent,
	// which callers treat as an unstructured failure.
	Errors []types.FieldError
}

func (e *APIError) Error() string {
	switch {
	case len(e.Errors) > 0:
		return fmt.Sprintf("api error %d: %d field error(s), first: %s: %s",
			e.StatusCode, len(e.Errors), e.Errors[0].Param, e.Errors[0].Error)
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// HasFieldErrors reports whether the response carried a structured errors list.
func (e *APIError) HasFieldErrors() bool {
	return e.Errors != nil
}

type errorBody struct {
	Error  string             `json:"error"`
	Errors []types.FieldError `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		// Non-JSON body (proxy page, plain text); keep a short excerpt.
		apiErr.Message = excerpt(string(body), 200)
		return apiErr
	}
	apiErr.Message = eb.Error
	apiErr.Errors = eb.Errors
	return apiErr
}

// excerpt shortens s to at most n runes.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
