// Package repository defines the persistence contracts consumed by the
// usecase layer.
package repository

import (
	"fidelity/internal/domain/entity"
)

// IdentityCache is the process-wide email -> identity store. It is the
// single source of truth for "does this email already have an account"
// between calls to the central registry. Entries live for the process
// lifetime; there is no eviction.
//
// All operations must be safe for unbounded concurrent callers and must
// never expose a partially written entry.
type IdentityCache interface {
	// Exists reports whether a (normalized) email is cached.
	// Empty or whitespace input reports false.
	Exists(email string) bool

	// Get returns the cached record for an email, or nil when absent.
	Get(email string) *entity.IdentityRecord

	// Add inserts a provisional entry (no identity code) only if the
	// email is not cached yet. Re-adding an existing email is a no-op.
	Add(email, store string)

	// UpdateWithIdentityCode marks an email as a finalized registration.
	// When the entry is absent a minimal complete entry is created with
	// the default store. Idempotent for the same email.
	UpdateWithIdentityCode(email, identityCode string)

	// UpdateWithFullRecord merges profile fields into the cached entry,
	// preserving an already known identity code when the incoming one is
	// empty, and marks the entry complete. Inserts when absent.
	UpdateWithFullRecord(email string, record *entity.IdentityRecord)

	// Remove deletes an entry. Removing an absent email is a no-op.
	Remove(email string)

	// Count returns the current number of cached entries. Safe to call
	// concurrently with writers.
	Count() int
}
