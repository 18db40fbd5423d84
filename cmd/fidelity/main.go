package main

import (
	"context"
	"log/slog"
	"os"

	"fidelity/config"
	"fidelity/internal/delivery"
	"fidelity/internal/delivery/http"
	"fidelity/internal/delivery/http/middleware"
	"fidelity/internal/delivery/http/router/handler"
	"fidelity/internal/domain/service"
	"fidelity/internal/infra/cache"
	"fidelity/internal/infra/card"
	logs "fidelity/internal/infra/log"
	"fidelity/internal/infra/mail"
	"fidelity/internal/infra/qrcode"
	"fidelity/internal/infra/sede"
	"fidelity/internal/infra/token"
	"fidelity/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
	Warmer     *impl.CacheWarmer
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		cache.NewIdentityCache,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			sede.NewClient,
			mail.NewMailer,
			newTokenStore,
			newQRCodeService,
			card.NewCardGenerator,
		),
	)
}

// newTokenStore selects the token backend from configuration.
func newTokenStore(cfg *config.Config, logger *slog.Logger) (service.TokenStore, error) {
	if cfg.Token.Backend == "memory" {
		return token.NewMemoryStore(cfg.Token.Retention, logger), nil
	}

	return token.NewFileStore(cfg.Token.Dir, cfg.Token.Retention, logger)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return qrcode.NewQRCodeService(256, "Q")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewVerificationService,
			impl.NewProfileService,
			impl.NewRegistrationService,
			impl.NewCacheAdminService,
			impl.NewCacheWarmer,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewFidelityHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	// Best-effort warm-up: a failed sync leaves an empty cache and the
	// service starts regardless.
	go params.Warmer.Warm(ctx)

	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
