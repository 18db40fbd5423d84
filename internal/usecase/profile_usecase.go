package usecase

import (
	"context"

	"fidelity/internal/domain/entity"
)

// ProfileUsecase resolves a profile-access token into the member's
// profile, preferring the cache, then the central registry, then a
// degraded minimal record when the token itself proves the identity.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, token string) (*entity.IdentityRecord, error)
}
