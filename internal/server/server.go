// package server contains middleware & handlers for the feed preview server
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixfeed/internal/feed"
	"github.com/desertthunder/mixfeed/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, request ids, and panic recovery.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const (
	wasmFile       = "feed.wasm"
	wasmExecFile   = "wasm_exec.js"
	stylesheetFile = "feed.css"
	shutdownGrace  = 5 * time.Second
)

// Options configures a [Server].
type Options struct {
	Fetcher   feed.Fetcher
	BaseURL   string // upstream origin, used to absolutize track URLs
	StaticDir string // optional wasm bundle directory
	Title     string
	Logger    *log.Logger
}

// Server is the feed preview server.
type Server struct {
	router *BasicRouter
	logger *log.Logger
	http   *http.Server
}

// New builds a server with every route registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), RequestID(), Logging(opts.Logger))

	assets := detectAssets(opts.StaticDir)
	feeds := &FeedHandler{
		fetcher: opts.Fetcher,
		baseURL: opts.BaseURL,
		title:   opts.Title,
		assets:  assets,
		logger:  opts.Logger,
	}

	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(feeds.ServePage))
	router.Handle(http.MethodGet, "/tracks/feed-api/", http.HandlerFunc(feeds.ServeAPI))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(handleHealth))
	if opts.StaticDir != "" {
		router.Handle(http.MethodGet, "/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return &Server{
		router: router,
		logger: opts.Logger,
		http: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "address", listener.Addr().String())
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "err", err)
		return err
	}
	return nil
}

// assets are the optional static files the page links to.
type assets struct {
	wasm       string
	wasmExec   string
	stylesheet string
}

func detectAssets(dir string) assets {
	var a assets
	if dir == "" {
		return a
	}
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}
	if exists(wasmFile) && exists(wasmExecFile) {
		a.wasm = "/static/" + wasmFile
		a.wasmExec = "/static/" + wasmExecFile
	}
	if exists(stylesheetFile) {
		a.stylesheet = "/static/" + stylesheetFile
	}
	return a
}
