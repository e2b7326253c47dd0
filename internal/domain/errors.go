package domain

import "errors"

var (
	ErrAuthenticationMissing  = errors.New("authentication missing")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
