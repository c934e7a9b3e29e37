package middleware

import (
	"net/http"
	"strings"
)

// CORSOptions holds the static CORS headers sent with every response.
type CORSOptions struct {
	Origin         string
	Methods        []string
	AllowedHeaders []string
}

func DefaultCORSOptions(origin string) CORSOptions {
	if origin == "" {
		origin = "*"
	}
	return CORSOptions{
		Origin:         origin,
		Methods:        []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	}
}

// Apply sets the CORS headers on h.
func (o CORSOptions) Apply(h http.Header) {
	h.Set("Access-Control-Allow-Origin", o.Origin)
	h.Set("Access-Control-Allow-Methods", strings.Join(o.Methods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(o.AllowedHeaders, ", "))
}

// CORS sets the headers and answers preflight OPTIONS requests with an empty 200.
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			o.Apply(w.Header())
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
