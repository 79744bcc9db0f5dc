package apperrors

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every coded error unwraps to exactly one of these so callers
// can branch with errors.Is regardless of the specific code.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("operation conflicts with current state")
	ErrProtected    = errors.New("resource is protected")
	ErrIntegrity    = errors.New("ledger integrity violation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")

	// ErrDuplicate is returned by repositories on unique violations.
	ErrDuplicate = fmt.Errorf("%w: resource already exists", ErrConflict)
)

// Code is a stable, caller-visible error code.
type Code string

const (
	CodeDuplicateCode          Code = "DUPLICATE_CODE"
	CodeSystemAccountLocked    Code = "SYSTEM_ACCOUNT_LOCKED"
	CodeSystemAccountProtected Code = "SYSTEM_ACCOUNT_PROTECTED"
	CodeAccountHasBalance      Code = "ACCOUNT_HAS_BALANCE"
	CodeAccountInUse           Code = "ACCOUNT_IN_USE"
	CodeAccountNotFound        Code = "ACCOUNT_NOT_FOUND"
	CodeAccountInactive        Code = "ACCOUNT_INACTIVE"
	CodeInvalidCategoryForType Code = "INVALID_CATEGORY_FOR_TYPE"
	CodeInvalidAccountType     Code = "INVALID_ACCOUNT_TYPE"
	CodeNormalBalanceMismatch  Code = "NORMAL_BALANCE_MISMATCH"

	CodeEntryNotFound        Code = "ENTRY_NOT_FOUND"
	CodeUnbalancedEntry      Code = "UNBALANCED_ENTRY"
	CodeTooFewLines          Code = "TOO_FEW_LINES"
	CodeInvalidLine          Code = "INVALID_LINE"
	CodeAutoEntryImmutable   Code = "AUTO_ENTRY_IMMUTABLE"
	CodePostedEntryImmutable Code = "POSTED_ENTRY_IMMUTABLE"
	CodeEntryAlreadyPosted   Code = "ENTRY_ALREADY_POSTED"
	CodeEntryNotPosted       Code = "ENTRY_NOT_POSTED"
	CodeEntryAlreadyReversed Code = "ENTRY_ALREADY_REVERSED"

	CodeInvalidDateRange       Code = "INVALID_DATE_RANGE"
	CodeTrialBalanceImbalanced Code = "TRIAL_BALANCE_IMBALANCED"
)

// Error is a coded application error.
type Error struct {
	Kind    error
	Code    Code
	Message string
	Details map[string]any
}

// New creates a coded error of the given kind.
func New(kind error, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind error, code Code, format string, args ...any) *Error {
	return New(kind, code, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// WithDetail returns e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the code of the first coded error in err's chain.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// DetailsOf extracts the details of the first coded error in err's chain.
func DetailsOf(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// MessageOf returns the message of a coded error, or err.Error() otherwise.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// KindName returns the taxonomy name for err.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrProtected):
		return "PROTECTED"
	case errors.Is(err, ErrIntegrity):
		return "INTEGRITY"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}
