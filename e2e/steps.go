// Package e2e runs the feature files against the full server stack: the UI
// router, session registry and option catalog talking to the fake backend
// over real HTTP.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"

	"causelist/e2e/steps/cascade"
	"causelist/internal/causelist"
	"causelist/internal/causelist/backendtest"
	"causelist/internal/causelist/handler"
	"causelist/internal/causelist/session"
	"causelist/internal/platform/config"
	"causelist/internal/platform/logger"
	"causelist/internal/platform/metrics"
)

// TestContext holds one scenario's stack and the last response.
type TestContext struct {
	backend *backendtest.Server
	servers []*httptest.Server
	baseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte
}

// RegisterSteps wires the step packages and the per-scenario lifecycle.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.Close()
		return ctx, err
	})
	cascade.RegisterSteps(ctx, tc)
}

// StartBackend starts the fake backend and the UI server in front of it.
func (tc *TestContext) StartBackend() error {
	tc.Close()
	fake := backendtest.New(backendtest.DefaultDirectory())
	backendSrv := httptest.NewServer(fake)
	tc.backend = fake
	tc.servers = append(tc.servers, backendSrv)

	log := logger.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client, err := causelist.NewBackend(config.Backend{
		BaseURL:         backendSrv.URL,
		Timeout:         5 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: time.Second,
	}, log, m)
	if err != nil {
		return err
	}
	cat, err := causelist.NewCatalog(client, causelist.NewCache(config.Cache{Size: 64, TTL: time.Minute}, nil), log, m)
	if err != nil {
		return err
	}
	sessions, err := session.NewRegistry(cat, cat, 16, time.Minute, session.WithLogger(log), session.WithMetrics(m))
	if err != nil {
		return err
	}
	h := handler.New(sessions, config.Session{CookieName: "causelist_session", TTL: time.Minute}, log)
	ui := httptest.NewServer(handler.NewRouter(h, log, handler.RouterConfig{Gatherer: reg}))
	tc.servers = append(tc.servers, ui)
	tc.baseURL = ui.URL
	return tc.NewSession()
}

// NewSession drops the cookie jar so the next request starts a new form.
func (tc *TestContext) NewSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	tc.client = &http.Client{Jar: jar, Timeout: 10 * time.Second}
	return nil
}

func (tc *TestContext) Close() {
	for _, s := range tc.servers {
		s.Close()
	}
	tc.servers = nil
	tc.backend = nil
}

func (tc *TestContext) Backend() *backendtest.Server {
	return tc.backend
}

// GET requests path from the UI server.
func (tc *TestContext) GET(path string) error {
	return tc.send(http.MethodGet, path, nil)
}

// POST sends body as JSON to path on the UI server.
func (tc *TestContext) POST(path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.send(http.MethodPost, path, raw)
}

func (tc *TestContext) send(method, path string, body []byte) error {
	if tc.client == nil {
		return fmt.Errorf("no server running")
	}
	req, err := http.NewRequest(method, tc.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// DecodeLast unmarshals the last response body into v.
func (tc *TestContext) DecodeLast(v any) error {
	if err := json.Unmarshal(tc.lastBody, v); err != nil {
		return fmt.Errorf("decode %q: %w", strings.TrimSpace(string(tc.lastBody)), err)
	}
	return nil
}

