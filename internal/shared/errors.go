package shared

import "errors"

// Error kinds. Every domain error wraps exactly one of these so transport
// layers can map it to a status code without knowing the domain.
var (
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or concurrency clash.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState indicates a lifecycle transition that is not allowed.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrUnauthorized indicates a missing or invalid principal.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the principal lacks the required level.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// Error carries a kind, a stable machine code and a message that is safe to
// show to end users.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

// NewError builds a domain error of the given kind.
func NewError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Is matches another *Error by code so wrapped copies still compare equal
// to the sentinel they were derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e with a different user message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Validation is a shortcut for ad-hoc validation failures.
func Validation(code, message string) *Error {
	return NewError(ErrValidation, code, message)
}

// UserSafeMessage extracts the message intended for end users. Empty when the
// error does not carry one.
func UserSafeMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ErrorCode extracts the stable machine code, if any.
func ErrorCode(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
