package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

type SessionCacheEntry struct {
	Snapshot  domain.SessionSnapshot
	Timestamp time.Time
}

type CacheAdapter struct {
	cache  *lru.Cache[string, *SessionCacheEntry]
	ttl    time.Duration
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	cache, err := lru.New[string, *SessionCacheEntry](cfg.Cache.SessionsSize)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SessionsSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		cache:  cache,
		ttl:    30 * time.Minute,
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetSessionSnapshot(ctx context.Context, sessionCode string) (*domain.SessionSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache.Get(sessionCode)
	if !exists {
		c.logger.Debug("cache.get.miss", out.LogFields{
			"sessionCode": sessionCode,
		})
		return nil, false
	}

	// Снапшот со временем протухает даже без событий инвалидации
	if time.Since(entry.Timestamp) > c.ttl {
		c.logger.Debug("cache.get.expired", out.LogFields{
			"sessionCode": sessionCode,
			"age":         time.Since(entry.Timestamp).String(),
		})
		return nil, false
	}

	c.logger.Debug("cache.get.hit", out.LogFields{
		"sessionCode":   sessionCode,
		"profilesCount": len(entry.Snapshot.Profiles),
		"slotsCount":    entry.Snapshot.Slots.Count(),
	})
	return &entry.Snapshot, true
}

func (c *CacheAdapter) StoreSessionSnapshot(ctx context.Context, sessionCode string, snapshot domain.SessionSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.store", out.LogFields{
		"sessionCode":   sessionCode,
		"profilesCount": len(snapshot.Profiles),
		"slotsCount":    snapshot.Slots.Count(),
	})

	newEntry := &SessionCacheEntry{
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}

	c.cache.Add(sessionCode, newEntry)
}

func (c *CacheAdapter) InvalidateSessionSnapshot(ctx context.Context, sessionCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.invalidate", out.LogFields{
		"sessionCode": sessionCode,
	})

	c.cache.Remove(sessionCode)
}

func (c *CacheAdapter) InvalidateAllSessions(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.invalidate_all", out.LogFields{
		"sessionsCount": c.cache.Len(),
	})

	c.cache.Purge()
}
