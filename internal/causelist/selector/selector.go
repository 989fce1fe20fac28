// Package selector owns the state of the cascading cause-list form.
//
// The four option lists depend on each other: districts on the state,
// complexes on the district, courts on the complex. Changing a value clears
// every level below it at once. Each level carries a sequence number that is
// bumped whenever a fetch for it starts or its ancestors change, so a
// response that arrives after a newer change is dropped instead of
// overwriting fresher state.
//
// Views never hold state of their own. They render Snapshot() or subscribe
// with OnChange.
package selector

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"causelist/internal/causelist/models"
	"causelist/internal/platform/metrics"
	"causelist/pkg/requestcontext"
)

// ErrStale is returned by a load whose response was superseded while in flight.
var ErrStale = errors.New("option list superseded by a newer selection")

// Alerter shows a message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// OptionSource fetches one option list.
type OptionSource interface {
	Options(ctx context.Context, level models.Level, sel models.Selection) (models.OptionList, error)
}

// Submitter sends a completed form.
type Submitter interface {
	Submit(ctx context.Context, kind models.Kind, sel models.Selection, date models.CauseDate) (*models.SubmitResult, error)
}

const levelCount = 4

// Form is an immutable snapshot of the selector.
type Form struct {
	Selection models.Selection
	Lists     [levelCount]models.OptionList
	Loading   [levelCount]bool
	// Result is the last successful submission for the current selection.
	Result *models.SubmitResult
	// Version increases with every change.
	Version uint64
}

// List returns the option list of level.
func (f Form) List(level models.Level) models.OptionList {
	if !level.Valid() {
		return models.OptionList{Level: level}
	}
	return f.Lists[level]
}

// Selector is safe for concurrent use. No lock is held while a backend call
// is in flight.
type Selector struct {
	source    OptionSource
	submitter Submitter
	alerter   Alerter
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu        sync.Mutex
	sel       models.Selection
	lists     [levelCount]models.OptionList
	loading   [levelCount]bool
	seq       [levelCount]uint64
	result    *models.SubmitResult
	version   uint64
	observers map[int]func(Form)
	nextObs   int
}

type Option func(*Selector)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) {
		s.metrics = m
	}
}

// New builds an empty form: every list holds only its placeholder.
func New(source OptionSource, submitter Submitter, alerter Alerter, opts ...Option) (*Selector, error) {
	if source == nil {
		return nil, errors.New("option source is required")
	}
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if alerter == nil {
		return nil, errors.New("alerter is required")
	}
	s := &Selector{
		source:    source,
		submitter: submitter,
		alerter:   alerter,
		logger:    slog.Default(),
		observers: make(map[int]func(Form)),
	}
	for _, level := range models.Levels {
		s.lists[level] = models.EmptyOptionList(level)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Snapshot returns the current form.
func (s *Selector) Snapshot() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Selector) snapshotLocked() Form {
	f := Form{
		Selection: s.sel,
		Loading:   s.loading,
		Result:    s.result,
		Version:   s.version,
	}
	for i, l := range s.lists {
		f.Lists[i] = models.NewOptionList(l.Level, l.Labels)
	}
	return f
}

// OnChange registers fn to receive every new snapshot. The returned func
// unregisters it. fn runs on the goroutine that made the change and must not
// call back into the selector synchronously.
func (s *Selector) OnChange(fn func(Form)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// changedLocked bumps the version and returns what observers need. Callers
// hand the result to publish after unlocking.
func (s *Selector) changedLocked() (Form, []func(Form)) {
	s.version++
	obs := make([]func(Form), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	return s.snapshotLocked(), obs
}

func publish(f Form, observers []func(Form)) {
	for _, fn := range observers {
		fn(f)
	}
}

// LoadStates fetches the state list. Failures are logged and leave the
// current list in place.
func (s *Selector) LoadStates(ctx context.Context) error {
	return s.Load(ctx, models.LevelState)
}

// LoadDistricts refetches the districts of the selected state.
func (s *Selector) LoadDistricts(ctx context.Context) error {
	return s.Load(ctx, models.LevelDistrict)
}

// LoadComplexes refetches the complexes of the selected district.
func (s *Selector) LoadComplexes(ctx context.Context) error {
	return s.Load(ctx, models.LevelComplex)
}

// LoadCourts refetches the courts of the selected complex.
func (s *Selector) LoadCourts(ctx context.Context) error {
	return s.Load(ctx, models.LevelCourt)
}

// Load fetches the option list of level for the current ancestors. It is a
// no-op when an ancestor is unset. It returns ErrStale when a newer change
// superseded the request, and the backend error (already logged) on failure.
func (s *Selector) Load(ctx context.Context, level models.Level) error {
	if !level.Valid() {
		return errors.New("unknown level")
	}

	s.mu.Lock()
	if _, ok := s.sel.Path(level); !ok {
		s.mu.Unlock()
		return nil
	}
	s.seq[level]++
	tag := s.seq[level]
	sel := s.sel
	s.loading[level] = true
	f, obs := s.changedLocked()
	s.mu.Unlock()
	publish(f, obs)

	list, err := s.source.Options(ctx, level, sel)

	s.mu.Lock()
	if s.seq[level] != tag {
		s.mu.Unlock()
		s.metrics.IncrementStale(level.String())
		s.logger.DebugContext(ctx, "discarding stale option list",
			"level", level.String(),
			"state", sel.State,
			"district", sel.District,
			"complex", sel.Complex,
		)
		return ErrStale
	}
	s.loading[level] = false
	if err == nil {
		s.lists[level] = models.NewOptionList(level, list.Labels)
	}
	f, obs = s.changedLocked()
	s.mu.Unlock()
	publish(f, obs)

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load options",
			"session_id", requestcontext.SessionID(ctx),
			"level", level.String(),
			"state", sel.State,
			"district", sel.District,
			"complex", sel.Complex,
			"error", err,
		)
		return err
	}
	return nil
}

// SelectState sets the state, clears district, complex and court, then loads
// the districts of the new state. An empty state loads nothing.
func (s *Selector) SelectState(ctx context.Context, state string) error {
	return s.choose(ctx, models.LevelState, state)
}

// SelectDistrict sets the district, clears complex and court, then loads the
// complexes.
func (s *Selector) SelectDistrict(ctx context.Context, district string) error {
	return s.choose(ctx, models.LevelDistrict, district)
}

// SelectComplex sets the complex, clears the court, then loads the courts.
func (s *Selector) SelectComplex(ctx context.Context, complexName string) error {
	return s.choose(ctx, models.LevelComplex, complexName)
}

// SelectCourt sets the court. Nothing depends on it, so nothing is fetched.
func (s *Selector) SelectCourt(ctx context.Context, court string) error {
	return s.choose(ctx, models.LevelCourt, court)
}

// Select dispatches to the Select method of level.
func (s *Selector) Select(ctx context.Context, level models.Level, value string) error {
	if !level.Valid() {
		return errors.New("unknown level")
	}
	return s.choose(ctx, level, value)
}

func (s *Selector) choose(ctx context.Context, level models.Level, value string) error {
	s.mu.Lock()
	s.sel = s.sel.With(level, value)
	for _, d := range level.Descendants() {
		s.lists[d] = models.EmptyOptionList(d)
		s.loading[d] = false
		s.seq[d]++
	}
	s.result = nil
	f, obs := s.changedLocked()
	s.mu.Unlock()
	publish(f, obs)

	if value == "" || level == models.LevelCourt {
		return nil
	}
	return s.Load(ctx, level+1)
}

// SetDate stores the raw date input (YYYY-MM-DD). It is parsed on Submit.
func (s *Selector) SetDate(raw string) {
	s.mu.Lock()
	s.sel.Date = raw
	s.result = nil
	f, obs := s.changedLocked()
	s.mu.Unlock()
	publish(f, obs)
}

// Submit validates the form and requests the cause list.
//
// Missing fields or an invalid date alert the user and return a
// *models.ValidationError without any backend call. On success the backend
// status is alerted. Backend failures are logged and returned, never alerted.
func (s *Selector) Submit(ctx context.Context, kind models.Kind) (*models.SubmitResult, error) {
	if _, err := models.ParseKind(kind.String()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sel := s.sel
	s.mu.Unlock()

	if err := sel.Validate(); err != nil {
		return nil, s.reject(ctx, kind, err)
	}
	date, err := models.ParseInputDate(sel.Date)
	if err != nil {
		return nil, s.reject(ctx, kind, err)
	}

	res, err := s.submitter.Submit(ctx, kind, sel, date)
	if err != nil {
		s.metrics.RecordSubmission(kind.String(), "failed")
		s.logger.ErrorContext(ctx, "submission failed",
			"session_id", requestcontext.SessionID(ctx),
			"kind", kind.String(),
			"court", sel.Court,
			"date", date.String(),
			"error", err,
		)
		return nil, err
	}
	s.metrics.RecordSubmission(kind.String(), "ok")

	s.mu.Lock()
	if s.sel == sel {
		s.result = res
	}
	f, obs := s.changedLocked()
	s.mu.Unlock()
	publish(f, obs)

	s.alerter.Alert(ctx, res.Status)
	return res, nil
}

func (s *Selector) reject(ctx context.Context, kind models.Kind, err error) error {
	s.metrics.RecordSubmission(kind.String(), "invalid")
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		s.alerter.Alert(ctx, ve.UserMessage())
	}
	return err
}
