package ledger

import "errors"

var (
	// ErrInvalidRange reports an end time that is not after the start time,
	// or a date/time that cannot be parsed at all.
	ErrInvalidRange = errors.New("end time must be after start time")
	// ErrInvalidBreak reports a missing, non-numeric or negative break.
	ErrInvalidBreak = errors.New("break minutes must be a whole number of 0 or more")
	// ErrInvalidState reports clocking in while working or out while not.
	ErrInvalidState = errors.New("invalid clock state")
	// ErrNotFound reports an unknown record id.
	ErrNotFound = errors.New("record not found")
	// ErrCorruptState reports persisted data that cannot be rehydrated.
	ErrCorruptState = errors.New("corrupt ledger state")
)
