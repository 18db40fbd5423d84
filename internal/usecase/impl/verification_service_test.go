package impl

import (
	"context"
	"testing"
	"time"

	"fidelity/config"
	"fidelity/internal/domain/entity"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationFixture() (*fakeCache, *fakeRemote, *fakeTokens, *fakeMailer, usecase.VerificationUsecase) {
	cache := newFakeCache()
	remote := newFakeRemote()
	tokens := newFakeTokens()
	mailer := &fakeMailer{}

	service := NewVerificationService(VerificationServiceParams{
		Cache:  cache,
		Remote: remote,
		Tokens: tokens,
		Mailer: mailer,
		Config: &config.Config{Client: &config.ClientConfig{BaseURL: "https://card.example.com"}},
		Logger: discardLogger(),
	})

	return cache, remote, tokens, mailer, service
}

func TestVerificationService_ValidateEmail_CachedIdentity(t *testing.T) {
	cache, remote, tokens, mailer, service := newVerificationFixture()

	cache.records["user@example.com"] = &entity.IdentityRecord{
		Email:        "user@example.com",
		Store:        "NE002",
		IdentityCode: "NE0012345",
		Complete:     true,
		Name:         "Mario",
		AddedAt:      time.Now(),
	}

	output, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "User@Example.com"})
	require.NoError(t, err)
	assert.True(t, output.UserExists)

	assert.Zero(t, remote.emailCalls, "a finalized cache entry must not trigger a registry call")

	require.Len(t, mailer.profileAccess, 1)
	assert.Equal(t, "user@example.com", mailer.profileAccess[0].email)
	assert.Equal(t, "Mario", mailer.profileAccess[0].name)
	assert.Equal(t, "https://card.example.com/profile?token="+tokens.last, mailer.profileAccess[0].link)

	assert.Equal(t, "NE002\r\nuser@example.com\r\nNE0012345", tokens.payloads[tokens.last])
}

func TestVerificationService_ValidateEmail_RegistryIdentity(t *testing.T) {
	cache, remote, tokens, mailer, service := newVerificationFixture()

	remote.byEmail["user@example.com"] = &entity.RemoteIdentity{
		Found:        true,
		IdentityCode: "NE0012345",
		Email:        "user@example.com",
		Name:         "Mario",
		Surname:      "Rossi",
		Store:        "NE003",
	}

	output, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "user@example.com"})
	require.NoError(t, err)
	assert.True(t, output.UserExists)

	stored := cache.Get("user@example.com")
	require.NotNil(t, stored, "registry hit must be cached")
	assert.Equal(t, "NE0012345", stored.IdentityCode)
	assert.True(t, stored.Complete)
	assert.Equal(t, "Rossi", stored.Surname)

	require.Len(t, mailer.profileAccess, 1)
	assert.Contains(t, mailer.profileAccess[0].link, "/profile?token=")
	assert.Equal(t, "NE003\r\nuser@example.com\r\nNE0012345", tokens.payloads[tokens.last])
}

func TestVerificationService_ValidateEmail_UnknownIdentity(t *testing.T) {
	cache, _, tokens, mailer, service := newVerificationFixture()

	output, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{
		Email: "new@example.com",
		Store: "NE005",
	})
	require.NoError(t, err)
	assert.False(t, output.UserExists)

	require.Contains(t, cache.added, "new@example.com", "unknown address gets a provisional cache entry")
	stored := cache.Get("new@example.com")
	require.NotNil(t, stored)
	assert.False(t, stored.Complete)
	assert.Equal(t, "NE005", stored.Store)

	require.Len(t, mailer.verifications, 1)
	assert.Equal(t, "new@example.com", mailer.verifications[0].email)
	assert.Equal(t, "Customer", mailer.verifications[0].name)
	assert.Equal(t, "https://card.example.com/fidelity-form?token="+tokens.last, mailer.verifications[0].link)

	assert.Equal(t, "NE005\r\nnew@example.com", tokens.payloads[tokens.last])
}

func TestVerificationService_ValidateEmail_ProvisionalEntryNotReAdded(t *testing.T) {
	cache, _, _, _, service := newVerificationFixture()

	// A prior incomplete entry exists: revalidation must not reset it.
	cache.records["new@example.com"] = &entity.IdentityRecord{
		Email:   "new@example.com",
		Store:   "NE005",
		AddedAt: time.Now(),
	}

	output, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "new@example.com"})
	require.NoError(t, err)
	assert.False(t, output.UserExists)
	assert.Empty(t, cache.added)
}

func TestVerificationService_ValidateEmail_EmptyEmail(t *testing.T) {
	_, _, _, _, service := newVerificationFixture()

	_, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrEmailRequired)
}

func TestVerificationService_ValidateEmail_MailFailureStillSucceeds(t *testing.T) {
	_, _, _, mailer, service := newVerificationFixture()
	mailer.sendErr = errors.New("smtp down")

	output, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "new@example.com"})
	require.NoError(t, err, "a failed send must not fail the verification")
	assert.False(t, output.UserExists)
	assert.Len(t, mailer.verifications, 1)
}

func TestVerificationService_ValidateEmail_TokenIssueFailure(t *testing.T) {
	cache, _, tokens, mailer, service := newVerificationFixture()
	tokens.issueErr = errors.New("disk full")

	cache.records["user@example.com"] = &entity.IdentityRecord{
		Email:        "user@example.com",
		Store:        "NE001",
		IdentityCode: "NE0012345",
		Complete:     true,
	}

	_, err := service.ValidateEmail(context.Background(), &usecase.ValidateEmailInput{Email: "user@example.com"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrTokenIssueFailed.ErrorCode(), appErr.ErrorCode())
	assert.Empty(t, mailer.profileAccess)
}

func TestVerificationService_ConfirmToken(t *testing.T) {
	_, _, tokens, _, service := newVerificationFixture()

	tok, err := tokens.Issue("NE001", "user@example.com")
	require.NoError(t, err)

	assert.Equal(t, "NE001\r\nuser@example.com", service.ConfirmToken(context.Background(), tok))
	assert.Empty(t, service.ConfirmToken(context.Background(), "unknown"))
}
