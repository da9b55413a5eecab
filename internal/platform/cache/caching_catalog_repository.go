// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"strategy_backend/internal/feature/catalog/domain/entity"
	"strategy_backend/internal/feature/catalog/usecase"
)

// CachingCatalogRepository decorates a CatalogRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching for the
// read-heavy listing paths without modifying the underlying repository.
//
// Only FindPage and FindByID are cached. FindByOrder, FindByName and
// FindMaxOrder feed the uniqueness pre-checks on write paths, where stale
// answers would produce wrong conflict errors, so they always hit the store.
type CachingCatalogRepository struct {
	inner     usecase.CatalogRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CatalogRepository = (*CachingCatalogRepository)(nil)

// NewCachingCatalogRepository decorates a CatalogRepository with Redis
// caching. If ttl is 0, it defaults to 5 minutes.
func NewCachingCatalogRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CatalogRepository, namespace string) *CachingCatalogRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "catalog"
	}
	return &CachingCatalogRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByID retrieves an entry, checking cache first then falling back to the
// store.
func (c *CachingCatalogRepository) FindByID(ctx context.Context, id uint) (*entity.Entry, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := fmt.Sprintf("%s:id:%d", c.namespace, id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Entry
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err() // Best effort
	}
	return out, nil
}

// FindByOrder always hits the store; it backs duplicate pre-checks.
func (c *CachingCatalogRepository) FindByOrder(ctx context.Context, order int) (*entity.Entry, error) {
	return c.inner.FindByOrder(ctx, order)
}

// FindByName always hits the store; it backs duplicate pre-checks.
func (c *CachingCatalogRepository) FindByName(ctx context.Context, name string) (*entity.Entry, error) {
	return c.inner.FindByName(ctx, name)
}

// FindMaxOrder always hits the store; it backs default-order assignment.
func (c *CachingCatalogRepository) FindMaxOrder(ctx context.Context) (int, error) {
	return c.inner.FindMaxOrder(ctx)
}

// FindPage retrieves a page, checking cache first then falling back to the
// store.
func (c *CachingCatalogRepository) FindPage(ctx context.Context, page, size int, active *entity.Flag) (*entity.Page, error) {
	if c.rdb == nil {
		return c.inner.FindPage(ctx, page, size, active)
	}

	key := c.pageKey(page, size, active)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Page
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindPage(ctx, page, size, active)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Save writes through to the store and invalidates the catalog's cache.
func (c *CachingCatalogRepository) Save(ctx context.Context, e *entity.Entry) error {
	if err := c.inner.Save(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete writes through to the store and invalidates the catalog's cache.
func (c *CachingCatalogRepository) Delete(ctx context.Context, e *entity.Entry) error {
	if err := c.inner.Delete(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// InTx runs fn against the uncached store-bound repository and invalidates
// the catalog's cache after a successful commit.
func (c *CachingCatalogRepository) InTx(ctx context.Context, fn func(usecase.CatalogRepository) error) error {
	if err := c.inner.InTx(ctx, fn); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingCatalogRepository) pageKey(page, size int, active *entity.Flag) string {
	flag := "all"
	if active != nil {
		flag = string(*active)
	}
	return fmt.Sprintf("%s:page:%d:%d:%s", c.namespace, page, size, flag)
}

// invalidate deletes all cache keys of this catalog using SCAN.
// Best effort: a failed invalidation only means a stale read until the TTL.
func (c *CachingCatalogRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}

	pattern := c.namespace + ":*"
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
}
