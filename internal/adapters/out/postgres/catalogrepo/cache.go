package catalogrepo

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
)

// CategoryCache keeps recently read categories across units of work. Categories are
// administered elsewhere, so entries expire instead of being invalidated.
type CategoryCache struct {
	lru *expirable.LRU[kernel.UUID, *catalog.Category]
}

func NewCategoryCache(size int, ttl time.Duration) *CategoryCache {
	return &CategoryCache{lru: expirable.NewLRU[kernel.UUID, *catalog.Category](size, nil, ttl)}
}

func (c *CategoryCache) get(id kernel.UUID) (*catalog.Category, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(id)
}

func (c *CategoryCache) add(category *catalog.Category) {
	if c == nil {
		return
	}
	c.lru.Add(category.ID(), category)
}

func (c *CategoryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
