package impl

import (
	"context"
	"log/slog"
	"strings"

	"fidelity/config"
	deliverycontext "fidelity/internal/delivery/context"
	"fidelity/internal/domain/entity"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/domain/repository"
	"fidelity/internal/domain/service"
	"fidelity/internal/usecase"

	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	cache        repository.IdentityCache
	remote       service.RemoteIdentityLookup
	tokens       service.TokenStore
	defaultStore string
	logger       *slog.Logger
}

// ProfileServiceParams holds dependencies for the profile service,
// injected by Fx.
type ProfileServiceParams struct {
	fx.In

	Cache  repository.IdentityCache
	Remote service.RemoteIdentityLookup
	Tokens service.TokenStore
	Config *config.Config
	Logger *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		cache:        params.Cache,
		remote:       params.Remote,
		tokens:       params.Tokens,
		defaultStore: firstNonEmpty(params.Config.DefaultStore, entity.DefaultStore),
		logger:       params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile resolves a profile token into the member's record. Once a
// token proves the member was verified, a registry outage degrades the
// answer to a minimal record instead of failing the view.
func (srv *profileService) GetProfile(ctx context.Context, token string) (*entity.IdentityRecord, error) {
	payload := srv.tokens.Read(token)
	if payload == "" {
		srv.log(ctx).Warn("Profile request with invalid or expired token")

		return nil, domainerrors.ErrTokenInvalid
	}

	lines := strings.Split(payload, "\r\n")
	if len(lines) < 2 {
		srv.log(ctx).Warn("Profile token with malformed payload")

		return nil, domainerrors.ErrTokenMalformed
	}

	store := strings.TrimSpace(lines[0])
	email := entity.NormalizeEmail(lines[1])
	identityCode := ""
	if len(lines) >= 3 {
		identityCode = strings.TrimSpace(lines[2])
	}

	// The cache is authoritative once an entry is complete.
	cached := srv.cache.Get(email)
	if cached != nil && cached.Complete {
		return cached, nil
	}

	var remote *entity.RemoteIdentity
	if identityCode != "" {
		srv.log(ctx).Info("Resolving profile via registry by code",
			slog.String("identityCode", identityCode))
		remote = srv.remote.FindByCode(ctx, identityCode)
	}
	if remote == nil || !remote.Found {
		srv.log(ctx).Info("Resolving profile via registry by email", slog.String("email", email))
		remote = srv.remote.FindByEmail(ctx, email)
	}

	if remote != nil && remote.Found {
		record := recordFromRemote(remote, firstNonEmpty(remote.Store, store, srv.defaultStore))
		if record.Email == "" {
			record.Email = email
		}
		srv.cache.UpdateWithFullRecord(email, record)

		return record, nil
	}

	if identityCode != "" {
		// Degraded path: assemble what we can from the token and any
		// partial cache data rather than hard-failing a proven member.
		srv.log(ctx).Warn("Registry unreachable, returning degraded profile",
			slog.String("email", email), slog.String("identityCode", identityCode))

		record := &entity.IdentityRecord{
			Email:        email,
			Store:        firstNonEmpty(store, srv.defaultStore),
			IdentityCode: identityCode,
			Complete:     true,
		}
		if cached != nil {
			record.Store = firstNonEmpty(cached.Store, record.Store)
			record.Name = cached.Name
			record.Surname = cached.Surname
			record.Phone = cached.Phone
			record.Address = cached.Address
			record.City = cached.City
			record.PostalCode = cached.PostalCode
			record.Province = cached.Province
			record.Country = cached.Country
			record.Sex = cached.Sex
			record.BirthDate = cached.BirthDate
		}

		return record, nil
	}

	srv.log(ctx).Warn("Profile unresolvable", slog.String("email", email))

	return nil, domainerrors.ErrIdentityNotFound
}
