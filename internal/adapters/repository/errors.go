package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownEntity = errors.New("unknown catalog entity")
	ErrMonthClosed   = errors.New("payout month already closed")
	ErrInvalidShare  = errors.New("revenue share must be in [0,100]")
)
