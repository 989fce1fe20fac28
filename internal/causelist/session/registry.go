// Package session keeps one selector per browser session in memory.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"causelist/internal/causelist/selector"
	"causelist/internal/causelist/view"
	"causelist/internal/platform/metrics"
	"causelist/pkg/platform/sentinel"
)

// Session is one browser's form.
type Session struct {
	ID       string
	Selector *selector.Selector
	Alerts   *view.FlashAlerter

	// statesMu serialises state-list loads; statesLoaded is set once one
	// succeeded.
	statesMu     sync.Mutex
	statesLoaded bool
}

// EnsureStates loads the state list until a load succeeds. After a failed
// load the next request tries again, so a backend hiccup on the first page
// view does not leave the state select empty for the session's lifetime.
func (s *Session) EnsureStates(ctx context.Context) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	if s.statesLoaded {
		return
	}
	if err := s.Selector.LoadStates(ctx); err == nil {
		s.statesLoaded = true
	}
}

// Registry is an expiring, size-bounded set of sessions.
type Registry struct {
	source    selector.OptionSource
	submitter selector.Submitter
	logger    *slog.Logger
	metrics   *metrics.Metrics

	sessions *expirable.LRU[string, *Session]
	active   atomic.Int64
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry holds at most size sessions, each expiring ttl after its last use.
func NewRegistry(source selector.OptionSource, submitter selector.Submitter, size int, ttl time.Duration, opts ...Option) (*Registry, error) {
	if source == nil || submitter == nil {
		return nil, errors.New("option source and submitter are required")
	}
	if size <= 0 {
		return nil, errors.New("session registry size must be positive")
	}
	r := &Registry{
		source:    source,
		submitter: submitter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	// The eviction callback runs under the LRU's lock, so it must not call
	// back into r.sessions.
	r.sessions = expirable.NewLRU[string, *Session](size, func(string, *Session) {
		r.metrics.SetActiveSessions(int(r.active.Add(-1)))
	}, ttl)
	return r, nil
}

// Create starts a new session with an empty form.
func (r *Registry) Create() (*Session, error) {
	alerts := &view.FlashAlerter{}
	sel, err := selector.New(r.source, r.submitter, alerts,
		selector.WithLogger(r.logger),
		selector.WithMetrics(r.metrics),
	)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		Selector: sel,
		Alerts:   alerts,
	}
	r.metrics.SetActiveSessions(int(r.active.Add(1)))
	r.sessions.Add(s.ID, s)
	return s, nil
}

// Get returns the session for id and refreshes its expiry. Unknown or
// expired ids yield sentinel.ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sentinel.ErrNotFound
	}
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	// expirable.LRU only extends the TTL on Add.
	r.sessions.Add(id, s)
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created reports which.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, err := r.Get(id); err == nil {
			return s, false, nil
		}
	}
	s, err = r.Create()
	return s, err == nil, err
}

// Remove drops a session.
func (r *Registry) Remove(id string) {
	r.sessions.Remove(id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
