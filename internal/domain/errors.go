package domain

import "errors"

var (
	ErrAuthStateMissing     = errors.New("auth state missing")
	ErrDirectoryUnavailable = errors.New("account directory unavailable")
	ErrValidationFailed     = errors.New("credential validation failed")
	ErrCredentialNotFound   = errors.New("credential not found")
)
