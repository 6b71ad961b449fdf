package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrInvalidPreset      = errors.New("invalid preset")
)
