package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"items-api/config"
	"items-api/framework"
	"items-api/middleware"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

// testContext is cancelled when the test ends, stopping the limiter sweep.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_EachFramework(t *testing.T) {
	for _, name := range framework.Supported() {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Framework = name
			app, err := newApplication(testContext(t), cfg, quietLogger())
			require.NoError(t, err)
			defer app.Close()

			assert.Equal(t, name, app.adapter.Name())
			rec := get(t, app.adapter.Handler(), "/api/items", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
		})
	}
}

func TestNewApplication_UnsupportedFramework(t *testing.T) {
	cfg := testConfig(t)
	cfg.Framework = "express"

	_, err := newApplication(testContext(t), cfg, quietLogger())
	assert.ErrorIs(t, err, framework.ErrUnsupportedFramework)
}

func TestNewApplication_RedisLimiterLeavesMemoryStoreUncached(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()
	cfg.RateLimit.Store = "redis"
	cfg.RateLimit.MaxRequests = 1

	app, err := newApplication(testContext(t), cfg, quietLogger())
	require.NoError(t, err)
	defer app.Close()
	h := app.adapter.Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/api/items/1", nil).Code)
	assert.False(t, mr.Exists("item:1"))

	rec := get(t, h, "/api/items/1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestNewApplication_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Addr = addr
	cfg.RateLimit.Store = "redis"

	_, err := newApplication(testContext(t), cfg, quietLogger())
	assert.Error(t, err)
}

func TestNewApplication_JWTAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Mode = "jwt"
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"

	app, err := newApplication(testContext(t), cfg, quietLogger())
	require.NoError(t, err)
	defer app.Close()
	h := app.adapter.Handler()

	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/items", nil).Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/docs", nil).Code)

	token, err := middleware.NewJWTAuth(cfg.Auth.JWTSecret).Issue("tester", time.Minute)
	require.NoError(t, err)
	rec := get(t, h, "/api/items", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := newLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "value", line["key"])
}
