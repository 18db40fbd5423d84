package service

import (
	"context"
)

// Mailer sends the transactional emails of the registration flow. All
// sends are best-effort relative to the enclosing operation: a failed
// send is logged by the caller and never surfaces to the client.
type Mailer interface {
	// SendVerification sends the "complete your registration" mail with
	// the registration link.
	SendVerification(ctx context.Context, email, name, link string) error

	// SendProfileAccess sends the personal-area access link to an
	// already registered member.
	SendProfileAccess(ctx context.Context, email, name, link string) error

	// SendWelcome sends the welcome mail for a finalized registration,
	// attaching the digital card PNG when present.
	SendWelcome(ctx context.Context, email, name, identityCode string, card []byte) error
}
