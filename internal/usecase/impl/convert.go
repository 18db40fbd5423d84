package impl

import (
	"fidelity/internal/domain/entity"
)

// recordFromRemote maps a registry hit onto a cacheable record. The store
// argument wins over the registry's own branch code.
func recordFromRemote(remote *entity.RemoteIdentity, store string) *entity.IdentityRecord {
	if store == "" {
		store = remote.Store
	}

	return &entity.IdentityRecord{
		Email:        entity.NormalizeEmail(remote.Email),
		Store:        store,
		IdentityCode: remote.IdentityCode,
		Name:         remote.Name,
		Surname:      remote.Surname,
		Phone:        remote.Phone,
		Address:      remote.Address,
		City:         remote.City,
		PostalCode:   remote.PostalCode,
		Province:     remote.Province,
		Country:      remote.Country,
		Sex:          remote.Sex,
		BirthDate:    remote.BirthDate,
	}
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}

	return ""
}

// displayName picks a salutation for mail templates.
func displayName(name string) string {
	if name == "" {
		return "Customer"
	}

	return name
}
