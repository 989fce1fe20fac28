// Package handler serves the cause-list form over HTTP: an HTML page driven
// by plain form posts, and a JSON API over the same sessions.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"causelist/internal/causelist/models"
	"causelist/internal/causelist/session"
	"causelist/internal/causelist/view"
	"causelist/internal/platform/config"
	"causelist/pkg/platform/httputil"
	"causelist/pkg/requestcontext"
)

// Handler handles the form and API endpoints.
type Handler struct {
	sessions *session.Registry
	cookie   config.Session
	logger   *slog.Logger
}

// New creates a new Handler.
func New(sessions *session.Registry, cookie config.Session, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// Register registers the HTML form routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/select/{level}", h.handleSelect)
	r.Post("/date", h.handleDate)
	r.Post("/submit/{kind}", h.handleSubmit)
}

// RegisterAPI registers the JSON routes; mount it under /api.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Get("/form", h.handleAPIForm)
	r.Post("/select/{level}", h.handleAPISelect)
	r.Post("/date", h.handleAPIDate)
	r.Post("/submit/{kind}", h.handleAPISubmit)
}

// requestError is a malformed request.
type requestError struct {
	msg string
}

func (e requestError) Error() string       { return e.msg }
func (e requestError) UserMessage() string { return e.msg }
func (e requestError) ErrorCode() string   { return "bad_request" }
func (e requestError) HTTPStatus() int     { return http.StatusBadRequest }

// session resolves the caller's session from the cookie, creating one (and
// loading its states) when the cookie is missing or stale.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, *http.Request, error) {
	var id string
	if c, err := r.Cookie(h.cookie.CookieName); err == nil {
		id = c.Value
	}
	sess, created, err := h.sessions.GetOrCreate(id)
	if err != nil {
		return nil, r, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r = r.WithContext(requestcontext.WithSessionID(r.Context(), sess.ID))
	if created {
		h.logger.InfoContext(r.Context(), "session started",
			"session_id", sess.ID,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	sess.EnsureStates(r.Context())
	return sess, r, nil
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	page := view.NewPage(sess.Selector.Snapshot(), sess.Alerts.Drain())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := view.RenderForm(w, page); err != nil {
		h.logger.ErrorContext(r.Context(), "render failed", "error", err)
	}
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	level, err := models.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	// Select forms carry the date input's current value so a typed but not
	// yet submitted date survives the redirect.
	if err := r.ParseForm(); err == nil && r.PostForm.Has("date") {
		sess.Selector.SetDate(r.PostForm.Get("date"))
	}
	h.applySelect(r, sess, level, r.PostForm.Get("value"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleDate(w http.ResponseWriter, r *http.Request) {
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	sess.Selector.SetDate(r.FormValue("date"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if err := r.ParseForm(); err == nil && r.PostForm.Has("date") {
		sess.Selector.SetDate(r.PostForm.Get("date"))
	}
	// Validation failures and the backend status reach the user as alerts;
	// backend failures are logged by the selector.
	_, _ = sess.Selector.Submit(r.Context(), kind)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAPIForm(w http.ResponseWriter, r *http.Request) {
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view.NewFormJSON(sess.Selector.Snapshot(), sess.Alerts.Drain()))
}

type selectRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleAPISelect(w http.ResponseWriter, r *http.Request) {
	level, err := models.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		httputil.WriteError(w, requestError{msg: err.Error()})
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, requestError{msg: "invalid request body"})
		return
	}
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.applySelect(r, sess, level, req.Value)
	httputil.WriteJSON(w, http.StatusOK, view.NewFormJSON(sess.Selector.Snapshot(), sess.Alerts.Drain()))
}

type dateRequest struct {
	Date string `json:"date"`
}

func (h *Handler) handleAPIDate(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, requestError{msg: "invalid request body"})
		return
	}
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	sess.Selector.SetDate(req.Date)
	httputil.WriteJSON(w, http.StatusOK, view.NewFormJSON(sess.Selector.Snapshot(), sess.Alerts.Drain()))
}

type submitResponse struct {
	Status  string             `json:"status"`
	Entries []models.CaseEntry `json:"entries,omitempty"`
	Form    view.FormJSON      `json:"form"`
}

func (h *Handler) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, requestError{msg: err.Error()})
		return
	}
	var req dateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, requestError{msg: "invalid request body"})
			return
		}
	}
	sess, r, err := h.session(w, r)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if req.Date != "" {
		sess.Selector.SetDate(req.Date)
	}

	res, err := sess.Selector.Submit(r.Context(), kind)
	if err != nil {
		// The error body carries the alert text.
		sess.Alerts.Drain()
		httputil.WriteError(w, err)
		return
	}
	sess.Alerts.Drain()
	httputil.WriteJSON(w, http.StatusOK, submitResponse{
		Status:  res.Status,
		Entries: res.Entries,
		Form:    view.NewFormJSON(sess.Selector.Snapshot(), nil),
	})
}

// applySelect ignores load errors: the selector logs backend failures and
// drops superseded responses, leaving the list empty either way.
func (h *Handler) applySelect(r *http.Request, sess *session.Session, level models.Level, value string) {
	_ = sess.Selector.Select(r.Context(), level, value)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}
