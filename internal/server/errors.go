// Package server provides the HTTP REST API behind the add-company form.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/placement-portal/internal/types"
)

// companyExistsMessage is the 409 body for a duplicate company name.
const companyExistsMessage = "company with same name already exists"

// ErrCompanyExists indicates a company with the same normalized name is stored
type ErrCompanyExists struct {
	Name string
}

func (e *ErrCompanyExists) Error() string {
	return companyExistsMessage
}

// ErrCompanyNotFound indicates no company has the requested ID
type ErrCompanyNotFound struct {
	ID uuid.UUID
}

func (e *ErrCompanyNotFound) Error() string {
	return fmt.Sprintf("company not found: %s", e.ID)
}

// ErrValidation indicates request validation failure, one entry per field
type ErrValidation struct {
	Errors []types.FieldError
}

func (e *ErrValidation) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Param+" - "+fe.Error)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// ErrBadRequest indicates a malformed request
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// ErrScrape indicates the company page could not be fetched or parsed
type ErrScrape struct {
	ProfileID string
	Err       error
}

func (e *ErrScrape) Error() string {
	return fmt.Sprintf("failed to scrape company profile %s: %v", e.ProfileID, e.Err)
}

func (e *ErrScrape) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		exists   *ErrCompanyExists
		notFound *ErrCompanyNotFound
		invalid  *ErrValidation
		bad      *ErrBadRequest
		scrape   *ErrScrape
	)
	switch {
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &scrape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message sent to clients for err. Upstream and
// internal details stay in the server log.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadGateway:
		return "failed to scrape company profile"
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
