// Package cache provides the in-memory identity cache backing email
// verification. It never touches the central registry itself; callers
// decide when a registry round-trip is worth it.
package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fidelity/internal/domain/entity"
	"fidelity/internal/domain/repository"
)

// identityCache implements repository.IdentityCache on top of a sync.Map
// of immutable *entity.IdentityRecord snapshots. Mutations publish a new
// record via CompareAndSwap, so readers never observe a torn entry and no
// global lock serializes requests.
type identityCache struct {
	entries sync.Map // normalized email -> *entity.IdentityRecord
	count   atomic.Int64
	logger  *slog.Logger
}

// NewIdentityCache creates an empty process-lifetime cache.
func NewIdentityCache(logger *slog.Logger) repository.IdentityCache {
	logger.Info("Identity cache initialized, starting empty")

	return &identityCache{logger: logger}
}

func (c *identityCache) Exists(email string) bool {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return false
	}

	_, ok := c.entries.Load(key)

	return ok
}

func (c *identityCache) Get(email string) *entity.IdentityRecord {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return nil
	}

	value, ok := c.entries.Load(key)
	if !ok {
		return nil
	}

	return value.(*entity.IdentityRecord)
}

func (c *identityCache) Add(email, store string) {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return
	}

	if store == "" {
		store = entity.DefaultStore
	}

	record := &entity.IdentityRecord{
		Email:   key,
		Store:   store,
		AddedAt: time.Now().UTC(),
	}

	if _, loaded := c.entries.LoadOrStore(key, record); loaded {
		c.logger.Debug("Email already cached, not added", slog.String("email", key))

		return
	}

	c.logger.Info("Email added to cache",
		slog.String("email", key),
		slog.String("store", store),
		slog.Int64("total", c.count.Add(1)))
}

func (c *identityCache) UpdateWithIdentityCode(email, identityCode string) {
	key := entity.NormalizeEmail(email)
	if key == "" || identityCode == "" {
		return
	}

	for {
		value, ok := c.entries.Load(key)
		if !ok {
			// No prior entry: create a minimal finalized record.
			record := &entity.IdentityRecord{
				Email:        key,
				Store:        entity.DefaultStore,
				IdentityCode: identityCode,
				Complete:     true,
				AddedAt:      time.Now().UTC(),
			}
			if _, loaded := c.entries.LoadOrStore(key, record); loaded {
				continue // lost the race, retry as an update
			}
			c.count.Add(1)
			c.logger.Info("Identity code cached for new entry",
				slog.String("email", key), slog.String("identityCode", identityCode))

			return
		}

		current := value.(*entity.IdentityRecord)
		if current.Complete && current.IdentityCode == identityCode {
			return
		}

		next := *current
		next.IdentityCode = identityCode
		next.Complete = true
		if c.entries.CompareAndSwap(key, current, &next) {
			c.logger.Info("Entry marked complete",
				slog.String("email", key), slog.String("identityCode", identityCode))

			return
		}
	}
}

func (c *identityCache) UpdateWithFullRecord(email string, record *entity.IdentityRecord) {
	key := entity.NormalizeEmail(email)
	if key == "" || record == nil {
		return
	}

	for {
		value, ok := c.entries.Load(key)
		if !ok {
			next := mergeRecords(key, nil, record)
			if _, loaded := c.entries.LoadOrStore(key, next); loaded {
				continue
			}
			c.count.Add(1)

			return
		}

		current := value.(*entity.IdentityRecord)
		next := mergeRecords(key, current, record)
		if c.entries.CompareAndSwap(key, current, next) {
			return
		}
	}
}

func (c *identityCache) Remove(email string) {
	key := entity.NormalizeEmail(email)
	if key == "" {
		return
	}

	if _, loaded := c.entries.LoadAndDelete(key); loaded {
		c.logger.Info("Email removed from cache",
			slog.String("email", key),
			slog.Int64("total", c.count.Add(-1)))
	}
}

func (c *identityCache) Count() int {
	return int(c.count.Load())
}

// mergeRecords builds the published snapshot for an upsert. Profile fields
// follow the incoming record (last full-data writer wins); the identity
// code, once known, is never unset; the original insertion time survives.
func mergeRecords(key string, current, incoming *entity.IdentityRecord) *entity.IdentityRecord {
	next := *incoming
	next.Email = key

	if current != nil {
		next.AddedAt = current.AddedAt
		if next.IdentityCode == "" {
			next.IdentityCode = current.IdentityCode
		}
		if next.Store == "" {
			next.Store = current.Store
		}
	} else {
		next.AddedAt = time.Now().UTC()
	}

	if next.Store == "" {
		next.Store = entity.DefaultStore
	}

	// A complete entry always carries an identity code.
	next.Complete = next.IdentityCode != ""

	return &next
}
