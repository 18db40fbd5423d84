package impl

import (
	"context"
	"fmt"
	"log/slog"

	"fidelity/internal/domain/entity"
	domainerrors "fidelity/internal/domain/errors"
	"fidelity/internal/domain/repository"
	"fidelity/internal/usecase"
)

// cacheAdminService implements the CacheAdminUsecase interface.
type cacheAdminService struct {
	cache  repository.IdentityCache
	logger *slog.Logger
}

// NewCacheAdminService is the constructor for cacheAdminService.
func NewCacheAdminService(cache repository.IdentityCache, logger *slog.Logger) usecase.CacheAdminUsecase {
	return &cacheAdminService{cache: cache, logger: logger}
}

func (srv *cacheAdminService) Status(context.Context) *usecase.CacheStatusOutput {
	return &usecase.CacheStatusOutput{TotalEmailsInCache: srv.cache.Count()}
}

func (srv *cacheAdminService) ClearEmail(_ context.Context, email string) (*usecase.ClearEmailOutput, error) {
	normalized := entity.NormalizeEmail(email)
	if normalized == "" {
		return nil, domainerrors.ErrEmailRequired
	}

	srv.cache.Remove(normalized)

	return &usecase.ClearEmailOutput{
		Message:      fmt.Sprintf("Email '%s' removed from cache", normalized),
		CurrentCount: srv.cache.Count(),
	}, nil
}
