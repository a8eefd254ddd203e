package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNoStore  = errors.New("result store not configured")
	ErrNotFound = errors.New("not found")
	ErrNoRoles  = errors.New("no roles configured")
)
