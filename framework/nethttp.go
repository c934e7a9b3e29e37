package framework

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"items-api/controllers"
)

// httpRequest adapts *http.Request to controllers.Request. Routers differ
// only in how they expose path parameters.
type httpRequest struct {
	w     http.ResponseWriter
	r     *http.Request
	param func(r *http.Request, name string) string
}

func (q *httpRequest) Context() context.Context  { return q.r.Context() }
func (q *httpRequest) Param(name string) string  { return q.param(q.r, name) }
func (q *httpRequest) Query(name string) string  { return q.r.URL.Query().Get(name) }
func (q *httpRequest) Header(name string) string { return q.r.Header.Get(name) }

func (q *httpRequest) Body() io.Reader {
	if q.r.Body == nil {
		return http.NoBody
	}
	return http.MaxBytesReader(q.w, q.r.Body, maxBodyBytes)
}

// httpResponse adapts http.ResponseWriter to controllers.Response.
type httpResponse struct {
	w      http.ResponseWriter
	status int
}

func (p *httpResponse) Status(code int) controllers.Response {
	p.status = code
	return p
}

func (p *httpResponse) code() int {
	if p.status == 0 {
		return http.StatusOK
	}
	return p.status
}

func (p *httpResponse) JSON(v any) error {
	p.w.Header().Set("Content-Type", "application/json")
	p.w.WriteHeader(p.code())
	return json.NewEncoder(p.w).Encode(v)
}

func (p *httpResponse) End() error {
	p.w.WriteHeader(p.code())
	return nil
}

// httpHandler runs a controller method as a net/http handler.
func httpHandler(h controllers.HandlerFunc, param func(*http.Request, string) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(&httpRequest{w: w, r: r, param: param}, &httpResponse{w: w})
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env controllers.Envelope) {
	res := &httpResponse{w: w}
	if err := res.Status(status).JSON(env); err != nil {
		slog.Error("failed to write response", "status", status, "error", err)
	}
}

// notFoundHandler answers unmatched routes.
func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, controllers.Fail("Route not found"))
	})
}

// recoverer turns a panic into a 500 envelope and keeps the server running.
// A response that has already started is left as it is.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error("panic while serving request",
					"panic", rvr,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))
				if ww.Status() != 0 {
					return
				}
				writeEnvelope(ww, http.StatusInternalServerError, controllers.Fail("Internal server error"))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// chain applies middlewares so the first one is outermost.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
