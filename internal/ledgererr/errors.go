// Package ledgererr is the error vocabulary shared by the ledger's stores,
// command services and HTTP layer. Every failure an operation can report is a
// sentinel *Error carrying a Kind; handlers map the Kind to a status code.
package ledgererr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInsufficientFunds
	KindInvalidCredential
	KindMutationFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindMutationFailed:
		return "mutation_failed"
	default:
		return "internal"
	}
}

// HTTPStatus is the status code a handler answers with for this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidCredential:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict, KindMutationFailed:
		return http.StatusConflict
	case KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to API callers.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Retryable reports whether repeating the same request may succeed.
func (e *Error) Retryable() bool { return e.Kind == KindMutationFailed }

var (
	ErrInvalidAmount      = &Error{Kind: KindValidation, Message: "Amount must be greater than zero with at most 2 decimal places"}
	ErrAccountNotFound    = &Error{Kind: KindNotFound, Message: "Bank account does not exist"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "User does not exist"}
	ErrNotOwner           = &Error{Kind: KindUnauthorized, Message: "You are not allowed to move funds from this account"}
	ErrSameAccount        = &Error{Kind: KindConflict, Message: "Source and destination accounts must differ"}
	ErrDuplicateUser      = &Error{Kind: KindConflict, Message: "A user with that email or phone number already exists"}
	ErrAccountNumberTaken = &Error{Kind: KindConflict, Message: "Account number is already in use"}
	ErrInsufficientFunds  = &Error{Kind: KindInsufficientFunds, Message: "Insufficient funds in the sender account"}
	ErrInvalidPin         = &Error{Kind: KindInvalidCredential, Message: "Invalid transaction pin"}
	ErrMutationFailed     = &Error{Kind: KindMutationFailed, Message: "The account changed while the operation was running, please retry"}
	ErrRegistrationFailed = &Error{Kind: KindInternal, Message: "An error occurred while creating the user"}
)

// As returns the first classified error in err's chain.
func As(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// KindOf classifies err; anything unclassified is internal.
func KindOf(err error) Kind {
	if le, ok := As(err); ok {
		return le.Kind
	}
	return KindInternal
}
