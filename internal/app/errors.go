package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrEmptyName     = errors.New("name must not be empty")
	ErrBadScore      = errors.New("scores must be whole numbers")
	ErrCodeExhausted = errors.New("could not allocate a free pool code")
)
