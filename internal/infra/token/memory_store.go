package token

import (
	"log/slog"
	"time"

	"fidelity/internal/domain/service"

	"github.com/jellydator/ttlcache/v3"
)

// memoryStore is a ttlcache-backed token store for deployments without a
// writable token directory. Expiry is enforced by the cache itself; the
// read-triggered sweep of the file store becomes a DeleteExpired pass.
type memoryStore struct {
	cache  *ttlcache.Cache[string, string]
	logger *slog.Logger
}

// NewMemoryStore creates an in-memory token store with the given
// retention window.
func NewMemoryStore(retention time.Duration, logger *slog.Logger) service.TokenStore {
	if retention <= 0 {
		retention = DefaultRetention
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](retention),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()

	return &memoryStore{cache: cache, logger: logger}
}

func (s *memoryStore) Issue(store, email string) (string, error) {
	return s.persist(store + payloadSeparator + email)
}

func (s *memoryStore) IssueProfile(store, email, identityCode string) (string, error) {
	return s.persist(store + payloadSeparator + email + payloadSeparator + identityCode)
}

func (s *memoryStore) persist(payload string) (string, error) {
	tok, err := Generate()
	if err != nil {
		return "", err
	}

	s.cache.Set(tok, payload, ttlcache.DefaultTTL)

	return tok, nil
}

func (s *memoryStore) Read(token string) string {
	item := s.cache.Get(token)

	// An expired Get already misses, so sweeping after the lookup can
	// never evict the token being read.
	s.cache.DeleteExpired()

	if item == nil {
		return ""
	}

	return item.Value()
}

func (s *memoryStore) SweepExpired(time.Duration) {
	s.cache.DeleteExpired()
}
