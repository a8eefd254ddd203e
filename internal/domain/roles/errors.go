package roles

import "errors"

// Sentinel kinds for role configuration.
var (
	ErrInvalidRole = errors.New("invalid role definition")
	ErrLoadRoles   = errors.New("load roles failed")
)
