package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.OPS.BaseURL = "https://ops.example.test/3.2"
	cfg.OPS.Timeout = 5 * time.Second
	cfg.Cache.Backend = "sqlite"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	cfg.Cache.TTL = time.Hour
	cfg.Throttle.RequestsPerMinute = 30
	return cfg
}

func initServices(t *testing.T, cfg config.Config) (*Services, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := InitServices(
		context.Background(),
		cfg,
		tracenoop.NewTracerProvider().Tracer("test"),
		zap.New(core).Sugar(),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, logs
}

func TestInitServicesDiscardsMiddlewareByDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true

	s, logs := initServices(t, cfg)

	assert.Empty(t, s.Client.Middlewares())
	assert.NotNil(t, s.Cache)
	assert.Same(t, s.Client, s.Tools.Client())

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	assert.Equal(t, []any{"cache", "throttle"}, warned[0].ContextMap()["discarded"])
}

func TestInitServicesAttachesMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.OPS.AttachMiddleware = true

	s, logs := initServices(t, cfg)

	assert.Equal(t, []string{"cache", "throttle"}, s.Client.Middlewares())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestInitServicesWithoutCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.OPS.AttachMiddleware = true

	s, _ := initServices(t, cfg)

	assert.Nil(t, s.Cache)
	assert.Equal(t, []string{"throttle"}, s.Client.Middlewares())
}

func TestInitServicesSurvivesBrokenCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisURL = "not a url"
	cfg.OPS.AttachMiddleware = true

	s, logs := initServices(t, cfg)

	assert.Nil(t, s.Cache)
	assert.Equal(t, []string{"throttle"}, s.Client.Middlewares())
	assert.Equal(t, 1, logs.FilterMessage("Cache unavailable, continuing without it").Len())
}
