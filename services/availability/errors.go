package availability

import "errors"

var (
	// ErrInvalidWindow is returned for empty or inverted windows and non-positive granularity.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrMisaligned means an interval does not fall on cell boundaries.
	ErrMisaligned = errors.New("interval is not aligned to the booking step")
	// ErrBusy means some part of the requested interval is not free.
	ErrBusy = errors.New("interval is busy")
	// ErrExpired means the hold lapsed before it was committed.
	ErrExpired = errors.New("hold expired")
	// ErrInvalidToken means the hold token is unknown or was already consumed.
	ErrInvalidToken = errors.New("invalid hold token")
	// ErrClosed means the court is being removed and takes no new holds.
	ErrClosed = errors.New("court is closed")
)
