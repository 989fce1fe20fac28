// Package catalog resolves option lists through a cache in front of the
// backend and passes submissions straight through.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"causelist/internal/causelist/backend"
	"causelist/internal/causelist/catalog/store"
	"causelist/internal/causelist/models"
	"causelist/internal/platform/metrics"
	"causelist/pkg/platform/sentinel"
)

// Cache stores option lists keyed by level and ancestor path. Find returns
// sentinel.ErrNotFound on a miss.
type Cache interface {
	Find(ctx context.Context, level models.Level, path []string) (models.OptionList, error)
	Save(ctx context.Context, path []string, list models.OptionList) error
}

// Service satisfies backend.Client, so callers can use it in place of the raw client.
type Service struct {
	client  backend.Client
	cache   Cache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires client behind cache. A nil cache disables caching.
func NewService(client backend.Client, cache Cache, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("backend client is required")
	}
	s := &Service{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Options returns the option list for level under the ancestors in sel.
// Concurrent lookups of the same list share one backend call.
func (s *Service) Options(ctx context.Context, level models.Level, sel models.Selection) (models.OptionList, error) {
	path, ok := sel.Path(level)
	if !ok {
		return models.OptionList{}, backend.ErrIncompletePath
	}

	if list, ok := s.lookup(ctx, level, path); ok {
		return list, nil
	}

	key := store.Key(level, path)
	ch := s.group.DoChan(key, func() (any, error) {
		// The flight outlives any single caller; a caller that gives up
		// must not cancel the fetch for the others.
		flightCtx := context.WithoutCancel(ctx)
		list, err := s.client.Options(flightCtx, level, sel)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Save(flightCtx, path, list); err != nil {
				s.logger.WarnContext(ctx, "option cache save failed",
					"level", level.String(),
					"error", err,
				)
			}
		}
		return list, nil
	})

	select {
	case <-ctx.Done():
		return models.OptionList{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.OptionList{}, res.Err
		}
		list := res.Val.(models.OptionList)
		return models.NewOptionList(list.Level, list.Labels), nil
	}
}

func (s *Service) lookup(ctx context.Context, level models.Level, path []string) (models.OptionList, bool) {
	if s.cache == nil {
		return models.OptionList{}, false
	}
	list, err := s.cache.Find(ctx, level, path)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup(level.String(), "hit")
		return list, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.RecordCacheLookup(level.String(), "miss")
	default:
		s.metrics.RecordCacheLookup(level.String(), "error")
		s.logger.WarnContext(ctx, "option cache lookup failed",
			"level", level.String(),
			"error", err,
		)
	}
	return models.OptionList{}, false
}

// Submit is never cached.
func (s *Service) Submit(ctx context.Context, kind models.Kind, sel models.Selection, date models.CauseDate) (*models.SubmitResult, error) {
	return s.client.Submit(ctx, kind, sel, date)
}
