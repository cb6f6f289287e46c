package store

import (
	"context"
	"sync"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/store/model"
)

// CacheResultStore is a wrapper around a Results store which caches the
// lookups by token. Shared results never change, so only deletion
// invalidates an entry.
type CacheResultStore struct {
	delegate Results
	results  map[string]model.SharedResult
	// deletes counts Delete calls. A lookup racing a delete is not cached.
	deletes uint64
	mu      sync.Mutex
}

func NewCacheResultStore(delegate Results) Results {
	return &CacheResultStore{
		delegate: delegate,
		results:  make(map[string]model.SharedResult),
	}
}

func (c *CacheResultStore) InitialMigration(ctx context.Context) error {
	return c.delegate.InitialMigration(ctx)
}

func (c *CacheResultStore) Create(ctx context.Context, result model.SharedResult) (*model.SharedResult, error) {
	return c.delegate.Create(ctx, result)
}

func (c *CacheResultStore) GetByToken(ctx context.Context, token string) (*model.SharedResult, error) {
	c.mu.Lock()
	cached, found := c.results[token]
	deletes := c.deletes
	c.mu.Unlock()

	if found {
		if cached.Expired(time.Now()) {
			c.forget(token)
			return nil, ErrRecordNotFound
		}
		return &cached, nil
	}

	result, err := c.delegate.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.deletes == deletes {
		c.results[token] = *result
	}
	c.mu.Unlock()

	return result, nil
}

func (c *CacheResultStore) List(ctx context.Context, filter *ResultQueryFilter, opts *ResultQueryOptions) (model.SharedResultList, error) {
	return c.delegate.List(ctx, filter, opts)
}

func (c *CacheResultStore) Delete(ctx context.Context, token string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()

	err := c.delegate.Delete(ctx, token)
	c.forget(token)
	return err
}

func (c *CacheResultStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	c.mu.Lock()
	for token, r := range c.results {
		if r.Expired(now) {
			delete(c.results, token)
		}
	}
	c.mu.Unlock()
	return c.delegate.DeleteExpired(ctx, now)
}

func (c *CacheResultStore) forget(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, token)
}
