package domain

import "errors"

// Error kinds. Every error surfaced by the registry, ledger and identity
// services wraps exactly one of these.
var (
	ErrValidation      = errors.New("validation error")
	ErrState           = errors.New("state error")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
)

// Error carries a client-facing message and, for validation failures, the
// offending fields keyed by their JSON name.
type Error struct {
	Kind   error
	Msg    string
	Fields map[string][]string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: ErrValidation, Msg: msg, Fields: fields}
}

func FieldError(field, msg string) *Error {
	return Validation("invalid input", map[string][]string{field: {msg}})
}

func State(msg string) *Error { return &Error{Kind: ErrState, Msg: msg} }

func Conflict(msg string) *Error { return &Error{Kind: ErrConflict, Msg: msg} }

func NotFound(msg string) *Error { return &Error{Kind: ErrNotFound, Msg: msg} }

func Unauthenticated(msg string) *Error { return &Error{Kind: ErrUnauthenticated, Msg: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: ErrForbidden, Msg: msg} }
