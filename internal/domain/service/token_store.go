// Package service defines the interfaces for infrastructure collaborators
// consumed by the usecase layer.
package service

import (
	"time"
)

// TokenStore issues and resolves the opaque tokens embedded in the
// confirmation and profile-access links sent by email.
//
// Payload format is CRLF-joined lines: store, email and, for profile
// tokens, the identity code.
type TokenStore interface {
	// Issue creates a registration token bound to a store and email.
	Issue(store, email string) (string, error)

	// IssueProfile creates a profile-access token additionally carrying
	// the identity code.
	IssueProfile(store, email, identityCode string) (string, error)

	// Read returns the raw payload for a token, or the empty string when
	// the token is unknown or expired. As a side effect it sweeps every
	// other expired token, never the one being read.
	Read(token string) string

	// SweepExpired deletes all tokens older than maxAge. Best effort: a
	// failed delete of one token must not abort the sweep of the rest.
	SweepExpired(maxAge time.Duration)
}
