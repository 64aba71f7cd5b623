package service

import "errors"

// Sentinel errors returned by Service.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrStoreDisabled = errors.New("task archive disabled")
)
