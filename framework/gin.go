package framework

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	chimw "github.com/go-chi/chi/v5/middleware"

	"items-api/controllers"
	"items-api/middleware"
	"items-api/routes"
)

type ginAdapter struct {
	deps   Dependencies
	engine *gin.Engine
}

func newGinAdapter(deps Dependencies) Adapter {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.RedirectTrailingSlash = false

	a := &ginAdapter{deps: deps, engine: engine}
	a.configureMiddleware()
	a.configureRoutes()
	a.configureErrorHandling()
	return a
}

func (a *ginAdapter) configureMiddleware() {
	logger := a.deps.Logger
	a.engine.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rvr any) {
		logger.Error("panic while serving request",
			"panic", rvr,
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, controllers.Fail("Internal server error"))
	}))
	if a.deps.TrustProxy {
		a.engine.Use(fromHTTP(chimw.RealIP))
	}
	a.engine.Use(
		fromHTTP(middleware.RequestID),
		fromHTTP(middleware.CORS(a.deps.CORS)),
	)
	if a.deps.LogRequests {
		a.engine.Use(func(c *gin.Context) {
			start := time.Now()
			c.Next()
			middleware.LogRequest(logger, c.Request, c.Writer.Status(), time.Since(start))
		})
	}
	if a.deps.Limiter != nil {
		a.engine.Use(fromHTTP(middleware.RateLimit(a.deps.Limiter, logger)))
	}
}

func (a *ginAdapter) configureRoutes() {
	for _, route := range routes.SetupRoutes(a.deps.Controller) {
		handlers := []gin.HandlerFunc{}
		if a.deps.Auth != nil {
			handlers = append(handlers, fromHTTP(a.deps.Auth))
		}
		handlers = append(handlers, ginHandler(route.Handler))
		a.engine.Handle(route.Method, routes.ColonPath(route.Path), handlers...)
	}
	docs := gin.WrapH(a.deps.Docs)
	for _, p := range a.deps.Docs.Paths() {
		a.engine.GET(p, docs)
	}
}

// Unknown methods on known paths fall through to NoRoute as well, since
// HandleMethodNotAllowed stays off.
func (a *ginAdapter) configureErrorHandling() {
	a.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, controllers.Fail("Route not found"))
	})
}

func (a *ginAdapter) Name() string { return "gin" }

func (a *ginAdapter) Handler() http.Handler { return a.engine }

func (a *ginAdapter) Listen(ctx context.Context, port int, onReady func(addr string)) error {
	return serve(ctx, a.engine, port, a.deps.Logger, onReady)
}

// fromHTTP runs a net/http middleware inside a gin chain. If the middleware
// does not call its next handler, the gin chain is aborted.
func fromHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}

func ginHandler(h controllers.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(&ginRequest{c: c}, &ginResponse{c: c})
	}
}

type ginRequest struct {
	c *gin.Context
}

func (q *ginRequest) Context() context.Context  { return q.c.Request.Context() }
func (q *ginRequest) Param(name string) string  { return q.c.Param(name) }
func (q *ginRequest) Query(name string) string  { return q.c.Query(name) }
func (q *ginRequest) Header(name string) string { return q.c.GetHeader(name) }

func (q *ginRequest) Body() io.Reader {
	if q.c.Request.Body == nil {
		return http.NoBody
	}
	return http.MaxBytesReader(q.c.Writer, q.c.Request.Body, maxBodyBytes)
}

type ginResponse struct {
	c      *gin.Context
	status int
}

func (p *ginResponse) Status(code int) controllers.Response {
	p.status = code
	return p
}

func (p *ginResponse) code() int {
	if p.status == 0 {
		return http.StatusOK
	}
	return p.status
}

func (p *ginResponse) JSON(v any) error {
	p.c.JSON(p.code(), v)
	if err := p.c.Errors.Last(); err != nil {
		return err
	}
	return nil
}

func (p *ginResponse) End() error {
	p.c.Status(p.code())
	p.c.Writer.WriteHeaderNow()
	return nil
}
