// Package store holds the option-list caches used by the catalog.
package store

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"causelist/internal/causelist/models"
	"causelist/pkg/platform/sentinel"
)

// Key identifies an option list by its level and ancestor values. Ancestors
// are path-escaped so a "/" inside a name cannot collide with the separator.
func Key(level models.Level, path []string) string {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, level.String())
	for _, p := range path {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}

// InMemoryCache is a size-bounded LRU of option lists with per-entry TTL.
type InMemoryCache struct {
	lru *expirable.LRU[string, models.OptionList]
}

// NewInMemoryCache keeps at most size lists, each for ttl.
func NewInMemoryCache(size int, ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		lru: expirable.NewLRU[string, models.OptionList](size, nil, ttl),
	}
}

// Find returns sentinel.ErrNotFound on a miss or an expired entry.
func (c *InMemoryCache) Find(_ context.Context, level models.Level, path []string) (models.OptionList, error) {
	list, ok := c.lru.Get(Key(level, path))
	if !ok {
		return models.OptionList{}, sentinel.ErrNotFound
	}
	return models.NewOptionList(list.Level, list.Labels), nil
}

func (c *InMemoryCache) Save(_ context.Context, path []string, list models.OptionList) error {
	c.lru.Add(Key(list.Level, path), models.NewOptionList(list.Level, list.Labels))
	return nil
}

// Len reports the number of live entries.
func (c *InMemoryCache) Len() int {
	return c.lru.Len()
}
