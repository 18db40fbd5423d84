package service

import (
	"context"

	"fidelity/internal/domain/entity"
)

// RemoteIdentityLookup is the contract against the central registry
// (Sede). Lookups tolerate every transport and payload failure by
// reporting "not found"; the orchestrator always has a defined fallback
// path, so registry outages narrow the flow instead of failing it.
type RemoteIdentityLookup interface {
	// FindByEmail looks an identity up by normalized email. Returns nil
	// when not found or on any remote failure.
	FindByEmail(ctx context.Context, email string) *entity.RemoteIdentity

	// FindByCode looks an identity up by its loyalty code.
	FindByCode(ctx context.Context, identityCode string) *entity.RemoteIdentity

	// ListAll fetches every registry identity for cache warm-up.
	// Best effort: any failure yields an empty slice, never an error.
	ListAll(ctx context.Context) []*entity.RemoteIdentity

	// CreateIdentity registers a new profile upstream and returns the
	// identity code assigned by the registry.
	CreateIdentity(ctx context.Context, record *entity.IdentityRecord) (string, error)
}
