// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
)

// --- Input DTOs ---

// ValidateEmailInput defines the data for an email verification request.
type ValidateEmailInput struct {
	Email string
	// Store is the optional point-of-sale hint of the originating branch.
	Store string
}

// --- Output DTOs ---

// ValidateEmailOutput tells the client whether the address already maps
// to a finalized loyalty identity.
type ValidateEmailOutput struct {
	UserExists bool `json:"userExists"`
}

// VerificationUsecase drives the email verification flow: cache first,
// central registry second, registration link as the fallback.
type VerificationUsecase interface {
	// ValidateEmail decides between the profile-access and registration
	// flows for an address and sends the matching notification mail.
	ValidateEmail(ctx context.Context, input *ValidateEmailInput) (*ValidateEmailOutput, error)

	// ConfirmToken resolves a confirmation token to its raw payload, or
	// the empty string when the token is unknown or expired.
	ConfirmToken(ctx context.Context, token string) string
}
