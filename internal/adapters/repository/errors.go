package repository

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrNotFound     = errors.New("task not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrClosed       = errors.New("store closed")
)
