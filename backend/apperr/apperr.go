// Package apperr carries the business error taxonomy from services to the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeForbidden          = "forbidden"
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodePreconditionFailed = "precondition_failed"
	CodeExternalService    = "external_service_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Errorf(format, args...))
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func PreconditionFailed(format string, args ...any) *Error {
	return New(http.StatusPreconditionFailed, CodePreconditionFailed, fmt.Errorf(format, args...))
}

// ExternalService wraps a collaborator failure; the cause stays reachable through Unwrap.
func ExternalService(err error) *Error {
	return New(http.StatusBadGateway, CodeExternalService, fmt.Errorf("external service failed: %w", err))
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func Is(err error, code string) bool {
	return code != "" && CodeOf(err) == code
}
