package framework

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"items-api/routes"
)

type chiAdapter struct {
	deps   Dependencies
	router chi.Router
}

func newChiAdapter(deps Dependencies) Adapter {
	a := &chiAdapter{deps: deps, router: chi.NewRouter()}
	a.configureMiddleware()
	a.configureRoutes()
	a.configureErrorHandling()
	return a
}

// configureMiddleware must run before any route is registered.
func (a *chiAdapter) configureMiddleware() {
	a.router.Use(a.deps.middlewares()...)
}

func (a *chiAdapter) configureRoutes() {
	for _, route := range routes.SetupRoutes(a.deps.Controller) {
		a.router.Method(route.Method, route.Path, a.deps.guard(httpHandler(route.Handler, chi.URLParam)))
	}
	for _, p := range a.deps.Docs.Paths() {
		a.router.Method(http.MethodGet, p, a.deps.Docs)
	}
}

func (a *chiAdapter) configureErrorHandling() {
	a.router.NotFound(notFoundHandler().ServeHTTP)
	a.router.MethodNotAllowed(notFoundHandler().ServeHTTP)
}

func (a *chiAdapter) Name() string { return "chi" }

func (a *chiAdapter) Handler() http.Handler { return a.router }

func (a *chiAdapter) Listen(ctx context.Context, port int, onReady func(addr string)) error {
	return serve(ctx, a.router, port, a.deps.Logger, onReady)
}
