// Package errors maps service failures onto client-facing categories and HTTP
// status codes.
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError marks a successful call.
	CategoryNoError Category = iota
	// CategoryDataError covers invalid request payloads or parameters.
	CategoryDataError
	// CategoryUnauthorized means the caller could not be authenticated.
	CategoryUnauthorized
	// CategoryForbidden means the caller is known but may not perform the action.
	CategoryForbidden
	// CategoryResourceNotFound means the requested resource does not exist.
	CategoryResourceNotFound
	// CategoryNotSupported means the requested functionality is not supported.
	CategoryNotSupported
	// CategoryDataConflict means the request conflicts with current state.
	CategoryDataConflict
	// CategoryLocked means the resource is not accepting the request in its current state.
	CategoryLocked
	// CategoryDependencyFailure means a downstream dependency failed.
	CategoryDependencyFailure
	// CategoryGeneralError means the service failed unexpectedly.
	CategoryGeneralError
	// CategoryRecovering means the service is failing but expected to recover.
	CategoryRecovering
	// CategoryConnectionTimeout means a downstream dependency timed out.
	CategoryConnectionTimeout
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryNotSupported:
		return "CategoryNotSupported"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryLocked:
		return "CategoryLocked"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryRecovering:
		return "CategoryRecovering"
	case CategoryConnectionTimeout:
		return "CategoryConnectionTimeout"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError is the error type returned by service layers. Message and
// Reason are shown to the client; Err is only logged.
type ServiceError struct {
	Category Category
	Message  string
	// Reason is a machine readable code, e.g. an admission denial code.
	Reason string
	Err    error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Category == cat
}

// CategoryOf returns the category of err, CategoryGeneralError for foreign errors.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryNoError
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Category
	}
	return CategoryGeneralError
}

// IsInternalError checks that provided error is a Internal system error
func IsInternalError(err error) bool {
	return CategoryOf(err) >= CategoryDependencyFailure
}

func newError(cat Category, err error, fallback, message string) *ServiceError {
	if err == nil {
		err = errors.New(fallback)
	}
	return &ServiceError{Category: cat, Message: message, Err: err}
}

// GeneralError hides err from the client behind "Internal Server Error".
func GeneralError(err error) error {
	return newError(CategoryGeneralError, err, "internal server error", "Internal Server Error")
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, "resource not found: "+message, message)
}

// BadRequestError returns an error with category DataError
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, "bad request: "+message, message)
}

// NotSupportedError returns an error with category NotSupported
func NotSupportedError(err error, message string) error {
	return newError(CategoryNotSupported, err, "not supported: "+message, message)
}

// ForbiddenError returns an error with category Forbidden
func ForbiddenError(err error, message string) error {
	return newError(CategoryForbidden, err, "request forbidden", message)
}

// UnAuthorizedError returns an error with category Unauthorized
func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, "unauthorized", message)
}

// ConflictError returns an error with category DataConflict
func ConflictError(err error, message string) error {
	return newError(CategoryDataConflict, err, "conflict", message)
}

// LockedError returns an error with category Locked
func LockedError(err error, message string) error {
	return newError(CategoryLocked, err, "locked", message)
}

// DependencyError returns an error with category DependencyFailure
func DependencyError(err error, message string) error {
	return newError(CategoryDependencyFailure, err, "dependency failure", message)
}

// WithReason attaches a machine readable reason to a ServiceError. Other
// errors are returned unchanged.
func WithReason(err error, reason string) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		cp := *svcErr
		cp.Reason = reason
		return &cp
	}
	return err
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryNotSupported:
		return http.StatusMethodNotAllowed
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryLocked:
		return http.StatusLocked
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryRecovering:
		return http.StatusServiceUnavailable
	case CategoryConnectionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
