package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyMember = errors.New("user already a pool member")
	ErrCodeTaken     = errors.New("pool code already taken")
)
