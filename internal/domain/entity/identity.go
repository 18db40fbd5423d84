// Package entity contains the core domain records of the fidelity service.
package entity

import (
	"strings"
	"time"
)

// DefaultStore is the sentinel branch code used when a request carries no
// point-of-sale hint and the central registry reports none either.
const DefaultStore = "NE001"

// NormalizeEmail trims surrounding whitespace and lowercases an address.
// Every entry point (cache keys, registry lookups, token payloads) goes
// through this so that casing variants resolve to one identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdentityRecord is a cache entry for one customer email.
// Complete == true implies IdentityCode is set.
type IdentityRecord struct {
	Email        string     `json:"email"`
	Store        string     `json:"store"`
	IdentityCode string     `json:"identityCode,omitempty"`
	Complete     bool       `json:"complete"`
	Name         string     `json:"name,omitempty"`
	Surname      string     `json:"surname,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	City         string     `json:"city,omitempty"`
	PostalCode   string     `json:"postalCode,omitempty"`
	Province     string     `json:"province,omitempty"`
	Country      string     `json:"country,omitempty"`
	Sex          string     `json:"sex,omitempty"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	AddedAt      time.Time  `json:"addedAt"`
}

// RemoteIdentity is the record shape returned by the central registry
// (Sede). Found == false signals no match, distinct from a zero record.
type RemoteIdentity struct {
	Found        bool
	IdentityCode string
	Name         string
	Surname      string
	Email        string
	Phone        string
	Address      string
	City         string
	PostalCode   string
	Province     string
	Country      string
	Sex          string
	BirthDate    *time.Time
	Store        string
}
