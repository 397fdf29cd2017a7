package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/creative-compliance/internal/autofix"
	"github.com/jonathan/creative-compliance/internal/htmlimport"
	"github.com/jonathan/creative-compliance/internal/validation"
)

// ErrNotFound indicates a stored resource was not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a malformed request parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStoreUnavailable indicates the server runs without a report store
type ErrStoreUnavailable struct{}

func (e *ErrStoreUnavailable) Error() string {
	return "report storage is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrNotFound
		badParam    *ErrValidation
		noStore     *ErrStoreUnavailable
		inputErr    *validation.InputError
		importErr   *htmlimport.ImportError
		applyErr    *autofix.ApplyError
		tooLargeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &badParam), errors.As(err, &inputErr), errors.As(err, &importErr), errors.As(err, &applyErr):
		return http.StatusBadRequest
	case errors.As(err, &noStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
