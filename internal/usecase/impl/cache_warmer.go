package impl

import (
	"context"
	"log/slog"

	"fidelity/config"
	"fidelity/internal/domain/repository"
	"fidelity/internal/domain/service"
)

// CacheWarmer performs the one-time startup sync loading every registry
// identity into the cache. Strictly best effort: any failure leaves the
// cache empty, which is a safe initial state.
type CacheWarmer struct {
	cache   repository.IdentityCache
	remote  service.RemoteIdentityLookup
	enabled bool
	logger  *slog.Logger
}

// NewCacheWarmer is the constructor for CacheWarmer.
func NewCacheWarmer(cache repository.IdentityCache, remote service.RemoteIdentityLookup, cfg *config.Config, logger *slog.Logger) *CacheWarmer {
	enabled := true
	if cfg.Cache != nil {
		enabled = cfg.Cache.WarmupEnabled
	}

	return &CacheWarmer{
		cache:   cache,
		remote:  remote,
		enabled: enabled,
		logger:  logger,
	}
}

// Warm loads the registry's identities into the cache.
func (w *CacheWarmer) Warm(ctx context.Context) {
	if !w.enabled {
		w.logger.Info("Cache warm-up disabled")

		return
	}

	w.logger.Info("Cache warm-up started")

	identities := w.remote.ListAll(ctx)
	loaded := 0
	for _, identity := range identities {
		if identity == nil || !identity.Found || identity.Email == "" {
			continue
		}

		w.cache.UpdateWithFullRecord(identity.Email, recordFromRemote(identity, identity.Store))
		loaded++
	}

	w.logger.Info("Cache warm-up completed",
		slog.Int("fetched", len(identities)),
		slog.Int("loaded", loaded),
		slog.Int("cacheSize", w.cache.Count()))
}
