package admin

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeRecordNotFound     = "RECORD_NOT_FOUND"
	TextCodeViewNotFound       = "VIEW_NOT_FOUND"
	TextCodeOperationDenied    = "OPERATION_NOT_ALLOWED"
	TextCodeInvalidExport      = "INVALID_EXPORT_TYPE"
	TextCodeValidation         = "VALIDATION_FAILED"
)

// ErrResponseSent is returned by an AuthenticationBackend that already wrote
// the response, typically a redirect.
var ErrResponseSent = errors.New("response already sent", errors.CategoryAuth)

// ErrInvalidCredentials is the error rendered on a failed login
var ErrInvalidCredentials = errors.New("Invalid credentials.", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrRecordNotFound is returned when no row matches the requested key
var ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeRecordNotFound).
	WithCode(errors.CodeNotFound)

// ErrViewNotFound is returned when no view is registered for an identity
var ErrViewNotFound = errors.New("view not found", errors.CategoryNotFound).
	WithTextCode(TextCodeViewNotFound).
	WithCode(errors.CodeNotFound)

// ErrOperationNotAllowed is returned when a model view disables an operation
var ErrOperationNotAllowed = errors.New("operation not allowed", errors.CategoryAuthz).
	WithTextCode(TextCodeOperationDenied).
	WithCode(errors.CodeForbidden)

// ErrInvalidExportType is returned for export types a view does not offer
var ErrInvalidExportType = errors.New("invalid export type", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidExport).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateView is returned when two views share an identity
var ErrDuplicateView = errors.New("view identity already registered", errors.CategoryConflict)

// ErrInvalidExposePath is returned for exposed routes not starting with a slash
var ErrInvalidExposePath = errors.New("exposed path must start with /", errors.CategoryBadInput)

// ErrUnsupportedModel is returned when a model view is not backed by a struct pointer
var ErrUnsupportedModel = errors.New("model must be a pointer to a struct", errors.CategoryBadInput)

// ErrMissingDB is returned when an Admin is built without a database handle
var ErrMissingDB = errors.New("bun database handle is required", errors.CategoryBadInput)

// ValidationErrors maps a column name to the message of the failing rule
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "form validation failed"
}

// statusFromError maps rich errors to HTTP status codes
func statusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var verr ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.Code > 0 {
			return richErr.Code
		}
		switch richErr.Category {
		case errors.CategoryNotFound:
			return http.StatusNotFound
		case errors.CategoryBadInput, errors.CategoryValidation:
			return http.StatusBadRequest
		case errors.CategoryAuth:
			return http.StatusUnauthorized
		case errors.CategoryAuthz:
			return http.StatusForbidden
		case errors.CategoryConflict:
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}
