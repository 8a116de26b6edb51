package store

import (
	"context"
	models "storefront/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CachedCatalog is a read-through LRU in front of another Catalog.
// Only Find is cached; misses (ErrNotFound) are not.
type CachedCatalog struct {
	next  Catalog
	cache *lru.Cache[string, models.Product]
}

func NewCachedCatalog(next Catalog, size int) (*CachedCatalog, error) {
	c, err := lru.New[string, models.Product](size)
	if err != nil {
		return nil, errors.Wrap(err, "create catalog cache")
	}
	return &CachedCatalog{next: next, cache: c}, nil
}

func (c *CachedCatalog) Find(ctx context.Context, id string) (models.Product, error) {
	if p, ok := c.cache.Get(id); ok {
		return p, nil
	}
	p, err := c.next.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	c.cache.Add(id, p)
	return p, nil
}

func (c *CachedCatalog) List(ctx context.Context) ([]models.Product, error) {
	ps, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		c.cache.Add(p.ID, p)
	}
	return ps, nil
}

func (c *CachedCatalog) Create(ctx context.Context, p models.Product) (string, error) {
	id, err := c.next.Create(ctx, p)
	if err != nil {
		return "", err
	}
	c.cache.Remove(id)
	return id, nil
}
