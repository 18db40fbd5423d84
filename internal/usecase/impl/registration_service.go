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

// registrationService implements the RegistrationUsecase interface.
type registrationService struct {
	cache        repository.IdentityCache
	remote       service.RemoteIdentityLookup
	cards        service.CardGenerator
	mailer       service.Mailer
	defaultStore string
	logger       *slog.Logger
}

// RegistrationServiceParams holds dependencies for the registration
// service, injected by Fx.
type RegistrationServiceParams struct {
	fx.In

	Cache  repository.IdentityCache
	Remote service.RemoteIdentityLookup
	Cards  service.CardGenerator
	Mailer service.Mailer
	Config *config.Config
	Logger *slog.Logger
}

// NewRegistrationService is the constructor for registrationService.
func NewRegistrationService(params RegistrationServiceParams) usecase.RegistrationUsecase {
	return &registrationService{
		cache:        params.Cache,
		remote:       params.Remote,
		cards:        params.Cards,
		mailer:       params.Mailer,
		defaultStore: firstNonEmpty(params.Config.DefaultStore, entity.DefaultStore),
		logger:       params.Logger,
	}
}

func (srv *registrationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register finalizes a card registration. The cache upsert is the
// operation's primary guarantee; registry write, card generation and the
// welcome mail are best-effort side effects.
func (srv *registrationService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.IdentityRecord, error) {
	record := input.ToRecord()
	if record.Email == "" {
		return nil, domainerrors.ErrEmailRequired
	}
	if record.Store == "" {
		record.Store = srv.defaultStore
	}

	if record.IdentityCode == "" {
		code, err := srv.remote.CreateIdentity(ctx, record)
		if err != nil {
			srv.log(ctx).Warn("Registry identity creation failed, accepting submission without code",
				slog.String("email", record.Email), slog.Any("error", err))
		} else {
			record.IdentityCode = code
		}
	}

	srv.cache.UpdateWithFullRecord(record.Email, record)
	stored := srv.cache.Get(record.Email)

	srv.log(ctx).Info("Registration stored",
		slog.String("email", record.Email),
		slog.String("identityCode", stored.IdentityCode))

	if stored.IdentityCode != "" {
		srv.sendWelcome(ctx, stored)
	}

	return stored, nil
}

// sendWelcome generates the digital card and mails it. Failures are
// logged and swallowed: the registration already succeeded.
func (srv *registrationService) sendWelcome(ctx context.Context, record *entity.IdentityRecord) {
	card, err := srv.cards.GenerateCard(record)
	if err != nil {
		srv.log(ctx).Error("Card generation failed",
			slog.String("email", record.Email), slog.Any("error", err))
		card = nil
	}

	if err := srv.mailer.SendWelcome(ctx, record.Email, displayName(record.Name), record.IdentityCode, card); err != nil {
		srv.log(ctx).Error("Welcome mail failed",
			slog.String("email", record.Email), slog.Any("error", err))
	}
}
