package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/exporter"
)

// Error is an error with an HTTP status and a stable code for clients
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error without a cause
func NewError(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// WrapError attaches a code and status to an existing error
func WrapError(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrValidation = NewError("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound   = NewError("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrTimeout    = NewError("TIMEOUT", http.StatusGatewayTimeout, "request timed out")
	ErrInternal   = NewError("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// invalid wraps a request error as a validation failure, listing the offending fields
func invalid(err error, message string) *Error {
	apiErr := WrapError(err, ErrValidation.Code, ErrValidation.Status, message)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fieldErr := range fieldErrs {
			apiErr.Fields = append(apiErr.Fields, fmt.Sprintf("%s:%s", lowerFirst(fieldErr.Field()), fieldErr.Tag()))
		}
	}
	return apiErr
}

// FromError maps domain errors onto API errors
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, db.ErrNotFound), errors.Is(err, solver.ErrUnknownSection):
		return WrapError(err, ErrNotFound.Code, ErrNotFound.Status, err.Error())
	case errors.Is(err, model.ErrInvalidTime), errors.Is(err, exporter.ErrInvalidDate):
		return invalid(err, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return WrapError(err, ErrTimeout.Code, ErrTimeout.Status, ErrTimeout.Message)
	case errors.Is(err, services.ErrInvalidRequest):
		return invalid(err, err.Error())
	default:
		return WrapError(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
