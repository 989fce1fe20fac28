package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"causelist/internal/causelist/models"
	"causelist/pkg/platform/httputil"
)

// Hook runs before the fake answers a request for the registered path. It may
// block, e.g. on a channel, to hold a response in flight.
type Hook func(r *http.Request)

// Server is the fake backend. It is safe for concurrent use.
type Server struct {
	router chi.Router

	mu       sync.Mutex
	dir      Directory
	calls    []string
	failures map[string]int
	hooks    map[string]Hook
	delay    time.Duration
}

// New builds a fake serving dir.
func New(dir Directory) *Server {
	s := &Server{
		dir:      dir,
		failures: make(map[string]int),
		hooks:    make(map[string]Hook),
	}
	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/get-states", s.handleStates)
	r.Get("/get-districts/{state}", s.handleDistricts)
	r.Get("/get-complexes/{state}/{district}", s.handleComplexes)
	r.Get("/get-courts/{state}/{district}/{complex}", s.handleCourts)
	r.Get("/submit-{kind}/{state}/{district}/{complex}/{court}/{date}", s.handleSubmit)
	s.router = r
	return s
}

// Start serves a fake for dir on a loopback listener closed with the test.
func Start(t *testing.T, dir Directory) (*Server, *httptest.Server) {
	t.Helper()
	s := New(dir)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Calls returns the decoded paths requested so far, in arrival order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts requests for exactly path.
func (s *Server) CallCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Fail makes every request for path answer status with an empty body.
// Status 0 clears the failure.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// OnRequest registers fn for path, replacing any earlier hook. A nil fn clears it.
func (s *Server) OnRequest(path string, fn Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, path)
		return
	}
	s.hooks[path] = fn
}

// SetDelay delays every response by d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetStatus overrides the submission status message.
func (s *Server) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir.Status = status
}

// SetEntries sets the cause-list rows returned with a successful submission.
func (s *Server) SetEntries(entries []models.CaseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir.Entries = append([]models.CaseEntry(nil), entries...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		s.mu.Lock()
		s.calls = append(s.calls, path)
		status := s.failures[path]
		hook := s.hooks[path]
		delay := s.delay
		s.mu.Unlock()

		if hook != nil {
			hook(r)
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) directory() Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"states": s.directory().StateNames()})
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	districts, ok := s.directory().Districts(param(r, "state"))
	if !ok {
		notFound(w, "unknown state")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"districts": districts})
}

func (s *Server) handleComplexes(w http.ResponseWriter, r *http.Request) {
	complexes, ok := s.directory().Complexes(param(r, "state"), param(r, "district"))
	if !ok {
		notFound(w, "unknown district")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"complexes": complexes})
}

func (s *Server) handleCourts(w http.ResponseWriter, r *http.Request) {
	courts, ok := s.directory().Courts(param(r, "state"), param(r, "district"), param(r, "complex"))
	if !ok {
		notFound(w, "unknown complex")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"courts": courts})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(param(r, "kind"))
	if err != nil {
		notFound(w, "unknown cause list kind")
		return
	}
	date, err := models.ParseSubmissionDate(param(r, "date"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	dir := s.directory()
	state, district, complexName, court := param(r, "state"), param(r, "district"), param(r, "complex"), param(r, "court")
	if !dir.HasCourt(state, district, complexName, court) {
		notFound(w, "unknown court")
		return
	}

	status := dir.Status
	if status == "" {
		status = fmt.Sprintf("%s cause list for %s on %s fetched", kind, court, date)
	}
	body := models.SubmitResult{Status: status, Entries: dir.Entries}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// param reads a path segment; chi hands back the escaped form when the
// request carried escapes.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func notFound(w http.ResponseWriter, msg string) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": msg})
}
