package impl

import (
	"context"
	"testing"
	"time"

	"fidelity/config"
	"fidelity/internal/domain/entity"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture() (*fakeCache, *fakeRemote, *fakeTokens, usecase.ProfileUsecase) {
	cache := newFakeCache()
	remote := newFakeRemote()
	tokens := newFakeTokens()

	service := NewProfileService(ProfileServiceParams{
		Cache:  cache,
		Remote: remote,
		Tokens: tokens,
		Config: &config.Config{},
		Logger: discardLogger(),
	})

	return cache, remote, tokens, service
}

func TestProfileService_GetProfile_InvalidToken(t *testing.T) {
	_, _, _, service := newProfileFixture()

	_, err := service.GetProfile(context.Background(), "unknown")
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestProfileService_GetProfile_MalformedPayload(t *testing.T) {
	_, _, tokens, service := newProfileFixture()

	tokens.payloads["broken"] = "just-one-line"

	_, err := service.GetProfile(context.Background(), "broken")
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestProfileService_GetProfile_CacheIsAuthoritative(t *testing.T) {
	cache, remote, tokens, service := newProfileFixture()

	cache.records["user@example.com"] = &entity.IdentityRecord{
		Email:        "user@example.com",
		Store:        "NE001",
		IdentityCode: "NE0012345",
		Complete:     true,
		Name:         "Mario",
		AddedAt:      time.Now(),
	}

	tok, err := tokens.IssueProfile("NE001", "user@example.com", "NE0012345")
	require.NoError(t, err)

	record, err := service.GetProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Mario", record.Name)
	assert.Zero(t, remote.emailCalls, "a complete cache entry answers without the registry")
	assert.Zero(t, remote.codeCalls)
}

func TestProfileService_GetProfile_RegistryByCode(t *testing.T) {
	cache, remote, tokens, service := newProfileFixture()

	remote.byCode["NE0012345"] = &entity.RemoteIdentity{
		Found:        true,
		IdentityCode: "NE0012345",
		Email:        "user@example.com",
		Name:         "Mario",
		Surname:      "Rossi",
		Store:        "NE002",
	}

	tok, err := tokens.IssueProfile("NE001", "user@example.com", "NE0012345")
	require.NoError(t, err)

	record, err := service.GetProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "NE0012345", record.IdentityCode)
	assert.Equal(t, "Rossi", record.Surname)
	assert.Equal(t, "NE002", record.Store)

	stored := cache.Get("user@example.com")
	require.NotNil(t, stored, "registry result is cached for the next request")
	assert.True(t, stored.Complete)
}

func TestProfileService_GetProfile_FallsBackToEmailLookup(t *testing.T) {
	_, remote, tokens, service := newProfileFixture()

	remote.byEmail["user@example.com"] = &entity.RemoteIdentity{
		Found:        true,
		IdentityCode: "NE0099999",
		Email:        "user@example.com",
		Name:         "Maria",
	}

	// Registration token: no identity code line.
	tok, err := tokens.Issue("NE001", "user@example.com")
	require.NoError(t, err)

	record, err := service.GetProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "NE0099999", record.IdentityCode)
	assert.Zero(t, remote.codeCalls, "no code in the token means no code lookup")
	assert.Equal(t, 1, remote.emailCalls)
}

func TestProfileService_GetProfile_DegradedWhenRegistryDown(t *testing.T) {
	cache, _, tokens, service := newProfileFixture()

	// Partial cache data from an earlier registration attempt.
	cache.records["user@example.com"] = &entity.IdentityRecord{
		Email:   "user@example.com",
		Store:   "NE003",
		Name:    "Mario",
		Surname: "Rossi",
		AddedAt: time.Now(),
	}

	tok, err := tokens.IssueProfile("NE001", "user@example.com", "NE0012345")
	require.NoError(t, err)

	record, err := service.GetProfile(context.Background(), tok)
	require.NoError(t, err, "a token holding a code proves membership even with the registry down")
	assert.Equal(t, "NE0012345", record.IdentityCode)
	assert.True(t, record.Complete)
	assert.Equal(t, "NE003", record.Store)
	assert.Equal(t, "Mario", record.Name)
	assert.Equal(t, "Rossi", record.Surname)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	_, _, tokens, service := newProfileFixture()

	tok, err := tokens.Issue("NE001", "ghost@example.com")
	require.NoError(t, err)

	_, err = service.GetProfile(context.Background(), tok)
	assert.ErrorIs(t, err, domainerrors.ErrIdentityNotFound)
}
