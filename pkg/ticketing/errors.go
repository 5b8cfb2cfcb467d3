package ticketing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned for malformed input. Nothing is changed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a ticket type or ticket does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a ticket is recorded under a channel that already has one.
	ErrConflict = errors.New("conflict")

	// ErrUnknownTicketType is returned when a ticket is requested for a type that no longer exists.
	ErrUnknownTicketType = errors.New("unknown ticket type")

	// ErrForbidden is returned when the requester may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyClaimed is matched by *AlreadyClaimedError.
	ErrAlreadyClaimed = errors.New("ticket already claimed")
)

// AlreadyClaimedError is returned when a ticket is claimed by someone other than the requester.
type AlreadyClaimedError struct {
	// ClaimedBy is the current claimant.
	ClaimedBy string
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("ticket already claimed by %s", e.ClaimedBy)
}

// Is makes errors.Is(err, ErrAlreadyClaimed) true.
func (e *AlreadyClaimedError) Is(target error) bool {
	return target == ErrAlreadyClaimed
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Category names the taxonomy bucket of an error, for logs and metrics.
func Category(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnknownTicketType):
		return "unknown_type"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// IsUserError reports whether the error is caused by the request rather than the service.
func IsUserError(err error) bool {
	switch Category(err) {
	case "validation", "unknown_type", "not_found", "already_claimed", "forbidden":
		return true
	default:
		return false
	}
}

// UserMessage is the text shown to the user who triggered err. Internal errors are not
// described beyond a generic apology.
func UserMessage(err error) string {
	var ace *AlreadyClaimedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ace):
		return fmt.Sprintf("This ticket has already been claimed by <@%s>.", ace.ClaimedBy)
	case errors.Is(err, ErrUnknownTicketType):
		return "That ticket type is no longer available."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "Not found: " + detail(err, ErrNotFound) + "."
	case errors.Is(err, ErrValidation):
		return "That request was invalid: " + detail(err, ErrValidation) + "."
	default:
		return "Something went wrong. Please try again later."
	}
}

func detail(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}
