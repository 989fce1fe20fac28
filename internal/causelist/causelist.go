// Package causelist wires the backend client, option catalog and caches from
// configuration. cmd/server and cmd/causelist both build on it.
package causelist

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"causelist/internal/causelist/backend"
	"causelist/internal/causelist/catalog"
	"causelist/internal/causelist/catalog/store"
	"causelist/internal/platform/config"
	"causelist/internal/platform/metrics"
	"causelist/pkg/platform/circuit"
)

// NewBackend builds the HTTP backend client with its timeout, rate limit and
// circuit breaker.
func NewBackend(cfg config.Backend, logger *slog.Logger, m *metrics.Metrics) (*backend.HTTPClient, error) {
	breaker := circuit.New("backend",
		circuit.WithFailureThreshold(cfg.BreakerFailures),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)
	client, err := backend.NewHTTPClient(cfg.BaseURL,
		backend.WithTimeout(cfg.Timeout),
		backend.WithRateLimit(cfg.RateLimit, cfg.Burst),
		backend.WithBreaker(breaker),
		backend.WithMetrics(m),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	return client, nil
}

// NewCache picks Redis when a client is given, otherwise an in-process LRU.
func NewCache(cfg config.Cache, rdb *redis.Client) catalog.Cache {
	if rdb != nil {
		return store.NewRedisCache(rdb, cfg.TTL)
	}
	return store.NewInMemoryCache(cfg.Size, cfg.TTL)
}

// NewCatalog builds the cached option catalog over client.
func NewCatalog(client backend.Client, cache catalog.Cache, logger *slog.Logger, m *metrics.Metrics) (*catalog.Service, error) {
	return catalog.NewService(client, cache,
		catalog.WithLogger(logger),
		catalog.WithMetrics(m),
	)
}
