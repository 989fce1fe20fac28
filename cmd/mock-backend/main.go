// Command mock-backend serves the cause-list backend routes from a YAML court
// directory so the UI server and CLI can run without the real scraper.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"causelist/internal/causelist/backendtest"
	"causelist/internal/platform/config"
	"causelist/internal/platform/httpserver"
	"causelist/internal/platform/logger"
	"causelist/internal/platform/middleware"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	dirPath := flag.String("directory", "", "YAML court directory; the built-in sample when empty")
	delay := flag.Duration("delay", 0, "delay every response, to watch loading states")
	flag.Parse()

	if err := run(*addr, *dirPath, *delay); err != nil {
		fmt.Fprintf(os.Stderr, "mock-backend: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, dirPath string, delay time.Duration) error {
	log, err := logger.NewWriter(os.Stdout, config.Log{Level: "info", Format: "text"})
	if err != nil {
		return err
	}

	dir := backendtest.DefaultDirectory()
	if dirPath != "" {
		if dir, err = backendtest.LoadDirectory(dirPath); err != nil {
			return err
		}
	}
	fake := backendtest.New(dir)
	fake.SetDelay(delay)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Mount("/", fake)

	srv := httpserver.New(config.Server{Addr: addr}, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving mock backend", "addr", addr, "states", len(dir.States))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("mock backend stopped", "error", err)
		return err
	}
	return nil
}
