package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrStopEqualsEntry = errors.New("stop loss cannot be the same as entry price")
)
