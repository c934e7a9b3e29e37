// Package framework binds the item routes to an HTTP library. Each adapter
// wraps a different router behind the same Adapter contract so the
// controllers run unmodified whichever one is selected at startup.
package framework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"items-api/controllers"
	"items-api/docs"
	"items-api/middleware"
	"items-api/routes"
)

// ErrUnsupportedFramework is returned by New for an unknown adapter name.
var ErrUnsupportedFramework = errors.New("framework not supported")

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

// Adapter is a configured HTTP server for the items API.
type Adapter interface {
	// Name returns the factory name of the adapter.
	Name() string
	// Handler returns the fully wired handler, middleware included.
	Handler() http.Handler
	// Listen binds :port, calls onReady with the bound address and serves
	// until ctx is cancelled, then shuts down gracefully. A bind failure is
	// returned immediately.
	Listen(ctx context.Context, port int, onReady func(addr string)) error
}

// Dependencies are the pieces every adapter wires together.
type Dependencies struct {
	Controller *controllers.ItemController
	// Limiter is optional; nil disables rate limiting.
	Limiter     middleware.Limiter
	CORS        middleware.CORSOptions
	Logger      *slog.Logger
	LogRequests bool
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that sets those headers.
	TrustProxy bool
	// Auth guards the item routes when set. Docs stay public.
	Auth func(http.Handler) http.Handler
	Docs *docs.Handler
}

// middlewares is the shared net/http stack, outermost first.
func (d Dependencies) middlewares() []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{recoverer(d.Logger)}
	if d.TrustProxy {
		mws = append(mws, chimw.RealIP)
	}
	mws = append(mws, middleware.RequestID, middleware.CORS(d.CORS))
	if d.LogRequests {
		mws = append(mws, middleware.RequestLogger(d.Logger))
	}
	if d.Limiter != nil {
		mws = append(mws, middleware.RateLimit(d.Limiter, d.Logger))
	}
	return mws
}

// guard wraps an item route with the configured auth check.
func (d Dependencies) guard(h http.Handler) http.Handler {
	if d.Auth == nil {
		return h
	}
	return d.Auth(h)
}

type constructor func(Dependencies) Adapter

var registry = map[string]constructor{
	"mux": newMuxAdapter,
	"chi": newChiAdapter,
	"gin": newGinAdapter,
}

// Supported lists the adapter names New accepts.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the adapter registered under name, matched case-insensitively.
func New(name string, deps Dependencies) (Adapter, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFramework, name, strings.Join(Supported(), ", "))
	}
	if deps.Controller == nil {
		return nil, errors.New("framework: item controller is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CORS.Origin == "" {
		deps.CORS = middleware.DefaultCORSOptions("*")
	}
	if deps.Docs == nil {
		h, err := docs.NewHandler(docs.Build(""), routes.DocsPath)
		if err != nil {
			return nil, err
		}
		deps.Docs = h
	}
	return ctor(deps), nil
}

// serve runs handler on :port until ctx is done.
func serve(ctx context.Context, handler http.Handler, port int, logger *slog.Logger, onReady func(addr string)) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if onReady != nil {
		onReady(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
