package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindInternal        Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried from services to handlers.
type Error struct {
	kind    Kind
	message string
	err     error
	fields  []FieldError
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *Error) Kind() string { return string(e.kind) }

func (e *Error) Message() string { return e.message }

func (e *Error) Fields() []FieldError { return e.fields }

func (e *Error) Unwrap() error { return e.err }

// Is matches another *Error of the same kind and message, so package-level
// sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.message == e.message
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{kind: kind, message: message, err: err}
}

// Validation builds a VALIDATION_ERROR listing every rejected field.
func Validation(fields ...FieldError) *Error {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return &Error{
		kind:    KindValidation,
		message: "validation failed: " + strings.Join(names, ", "),
		fields:  fields,
	}
}

func NotFound(what string) *Error {
	return New(KindNotFound, what+" not found")
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err. Errors not produced by this package are INTERNAL.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindInternal
}

// HTTPStatus maps err to the status code returned to clients.
func HTTPStatus(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FieldsOf returns the field list of a validation error, or nil.
func FieldsOf(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.fields
	}
	return nil
}

// HasField reports whether err is a validation error naming field.
func HasField(err error, field string) bool {
	for _, f := range FieldsOf(err) {
		if f.Field == field {
			return true
		}
	}
	return false
}
