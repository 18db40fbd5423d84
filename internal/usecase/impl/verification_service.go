// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"fidelity/config"
	deliverycontext "fidelity/internal/delivery/context"
	"fidelity/internal/domain/entity"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/domain/repository"
	"fidelity/internal/domain/service"
	"fidelity/internal/usecase"

	"go.uber.org/fx"
)

// verificationService implements the VerificationUsecase interface.
//
// Flow per request: cache first, central registry second, registration
// link as the fallback. Registry and mail failures narrow the flow to the
// registration path instead of failing it.
type verificationService struct {
	cache        repository.IdentityCache
	remote       service.RemoteIdentityLookup
	tokens       service.TokenStore
	mailer       service.Mailer
	clientBase   string
	defaultStore string
	logger       *slog.Logger
}

// VerificationServiceParams holds dependencies for the verification
// service, injected by Fx.
type VerificationServiceParams struct {
	fx.In

	Cache  repository.IdentityCache
	Remote service.RemoteIdentityLookup
	Tokens service.TokenStore
	Mailer service.Mailer
	Config *config.Config
	Logger *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	clientBase := ""
	if params.Config.Client != nil {
		clientBase = params.Config.Client.BaseURL
	}

	return &verificationService{
		cache:        params.Cache,
		remote:       params.Remote,
		tokens:       params.Tokens,
		mailer:       params.Mailer,
		clientBase:   clientBase,
		defaultStore: firstNonEmpty(params.Config.DefaultStore, entity.DefaultStore),
		logger:       params.Logger,
	}
}

func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ValidateEmail decides between the profile-access and registration flows.
func (srv *verificationService) ValidateEmail(ctx context.Context, input *usecase.ValidateEmailInput) (*usecase.ValidateEmailOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" {
		return nil, domainerrors.ErrEmailRequired
	}

	cached := srv.cache.Get(email)
	if cached != nil && cached.IdentityCode != "" {
		srv.log(ctx).Info("Email found in cache with identity code",
			slog.String("email", email), slog.String("identityCode", cached.IdentityCode))

		store := firstNonEmpty(input.Store, cached.Store, srv.defaultStore)

		return srv.grantProfileAccess(ctx, email, store, cached.IdentityCode, cached.Name)
	}

	srv.log(ctx).Info("Email not finalized in cache, consulting registry", slog.String("email", email))

	remote := srv.remote.FindByEmail(ctx, email)
	if remote != nil && remote.Found && remote.IdentityCode != "" {
		srv.log(ctx).Info("Identity found in registry",
			slog.String("email", email), slog.String("identityCode", remote.IdentityCode))

		store := firstNonEmpty(input.Store, remote.Store, srv.defaultStore)
		srv.cache.UpdateWithFullRecord(email, recordFromRemote(remote, store))

		return srv.grantProfileAccess(ctx, email, store, remote.IdentityCode, remote.Name)
	}

	// Unknown everywhere: provisional cache entry plus registration link.
	srv.log(ctx).Info("Identity unknown, sending registration link", slog.String("email", email))

	store := firstNonEmpty(input.Store, srv.defaultStore)
	if cached == nil {
		srv.cache.Add(email, store)
	}

	token, err := srv.tokens.Issue(store, email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue registration token",
			slog.String("email", email), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage("registration token")
	}

	link := srv.clientBase + "/fidelity-form?token=" + token
	if err := srv.mailer.SendVerification(ctx, email, displayName(""), link); err != nil {
		srv.log(ctx).Error("Failed to send verification mail",
			slog.String("email", email), slog.Any("error", err))
	}

	return &usecase.ValidateEmailOutput{UserExists: false}, nil
}

// grantProfileAccess mints a profile token and mails the access link.
func (srv *verificationService) grantProfileAccess(ctx context.Context, email, store, identityCode, name string) (*usecase.ValidateEmailOutput, error) {
	token, err := srv.tokens.IssueProfile(store, email, identityCode)
	if err != nil {
		srv.log(ctx).Error("Failed to issue profile token",
			slog.String("email", email), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage("profile token")
	}

	link := srv.clientBase + "/profile?token=" + token
	if err := srv.mailer.SendProfileAccess(ctx, email, displayName(name), link); err != nil {
		// Best effort: the verification outcome stands regardless.
		srv.log(ctx).Error("Failed to send profile access mail",
			slog.String("email", email), slog.Any("error", err))
	}

	return &usecase.ValidateEmailOutput{UserExists: true}, nil
}

// ConfirmToken resolves a token to its raw payload.
func (srv *verificationService) ConfirmToken(ctx context.Context, token string) string {
	payload := srv.tokens.Read(token)
	if payload == "" {
		srv.log(ctx).Warn("Token confirmation failed, unknown or expired")
	}

	return payload
}
