package domain

import "net/http"

// Identity is the authenticated principal behind a connection attempt.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// IdentityProvider resolves the identity for a connection attempt.
// Implementations return ErrAuthenticationMissing when no usable
// credentials are present on the request.
type IdentityProvider interface {
	Resolve(r *http.Request) (*Identity, error)
}
