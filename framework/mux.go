package framework

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"items-api/routes"
)

type muxAdapter struct {
	deps    Dependencies
	router  *mux.Router
	handler http.Handler
}

func newMuxAdapter(deps Dependencies) Adapter {
	a := &muxAdapter{deps: deps, router: mux.NewRouter()}
	a.configureRoutes()
	a.configureErrorHandling()
	// gorilla's Use only runs for matched routes, so the stack wraps the
	// router to also cover 404s and preflight requests.
	a.handler = chain(a.router, deps.middlewares()...)
	return a
}

func muxParam(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func (a *muxAdapter) configureRoutes() {
	for _, route := range routes.SetupRoutes(a.deps.Controller) {
		h := a.deps.guard(httpHandler(route.Handler, muxParam))
		a.router.Handle(route.Path, h).Methods(route.Method).Name(route.Name)
	}
	for _, p := range a.deps.Docs.Paths() {
		a.router.Handle(p, a.deps.Docs).Methods(http.MethodGet)
	}
}

func (a *muxAdapter) configureErrorHandling() {
	a.router.NotFoundHandler = notFoundHandler()
	a.router.MethodNotAllowedHandler = notFoundHandler()
}

func (a *muxAdapter) Name() string { return "mux" }

func (a *muxAdapter) Handler() http.Handler { return a.handler }

func (a *muxAdapter) Listen(ctx context.Context, port int, onReady func(addr string)) error {
	return serve(ctx, a.handler, port, a.deps.Logger, onReady)
}
