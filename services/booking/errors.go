package booking

import (
	"errors"
	"fmt"
)

// Reason classifies why a request was refused. Rejections are caller
// errors or expected contention, never system faults.
type Reason string

const (
	ReasonInvalidWindow     Reason = "InvalidWindow"
	ReasonOutOfWindow       Reason = "OutOfWindow"
	ReasonPastOrTooSoon     Reason = "PastOrTooSoon"
	ReasonConflict          Reason = "Conflict"
	ReasonNotOwner          Reason = "NotOwner"
	ReasonAlreadyTerminal   Reason = "AlreadyTerminal"
	ReasonTooLate           Reason = "TooLate"
	ReasonNotFound          Reason = "NotFound"
	ReasonCourtInactive     Reason = "CourtInactive"
	ReasonInvalidTransition Reason = "InvalidTransition"
)

type RejectedError struct {
	Reason  Reason
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func reject(reason Reason, format string, args ...interface{}) error {
	return &RejectedError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrUnavailable marks durable-storage failures. It is distinct from a
// rejection so callers can tell "try again later" from "slot taken".
var ErrUnavailable = errors.New("booking storage unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// AsRejected returns the rejection carried by err, if any.
func AsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsRejected reports whether err is a rejection with the given reason.
func IsRejected(err error, reason Reason) bool {
	re, ok := AsRejected(err)
	return ok && re.Reason == reason
}
