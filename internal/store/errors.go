package store

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrEmptyID           = errors.New("empty id")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrAlreadyDecided    = errors.New("request already decided")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyRequested  = errors.New("protocol already requested")
	ErrInvalidInput      = errors.New("invalid input")
)
