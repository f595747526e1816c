package internal

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/cache"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/config"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/ops"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/ops/middleware"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/tools"
)

type Services struct {
	Tools  *tools.Service
	Client ClientInterface
	// Cache is nil unless cache.enabled is set and the store opened.
	Cache cache.Store
}

// InitServices builds the OPS client once and hands it to the tool service.
func InitServices(
	ctx context.Context,
	cfg config.Config,
	tracer trace.Tracer,
	logger *zap.SugaredLogger,
	meter metric.Meter,
) (*Services, error) {
	s := &Services{}

	var mws []middleware.Middleware
	if cfg.Cache.Enabled {
		store, err := cache.Open(ctx, cfg.Cache.Backend, cfg.Cache.Path, cfg.Cache.RedisURL)
		if err != nil {
			logger.Errorw("Cache unavailable, continuing without it",
				"backend", cfg.Cache.Backend, "error", err)
		} else {
			s.Cache = store
			mws = append(mws, middleware.NewCache(store, cfg.Cache.TTL, logger).Middleware())
		}
	}
	mws = append(mws, middleware.NewThrottler(cfg.Throttle.RequestsPerMinute, logger).Middleware())

	if !cfg.OPS.AttachMiddleware {
		logger.Warnw("OPS middleware built but not attached; set ops.attach_middleware to enable it",
			"discarded", middleware.Names(mws))
		mws = nil
	}

	client, err := ops.New(ops.Config{
		Key:     cfg.OPS.Key,
		Secret:  cfg.OPS.Secret,
		BaseURL: cfg.OPS.BaseURL,
		Timeout: cfg.OPS.Timeout,
	},
		ops.WithMiddlewares(mws...),
		ops.WithLogger(logger),
		ops.WithTelemetry(tracer, meter),
	)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	s.Client = client

	s.Tools, err = tools.NewService(client, logger, tracer, meter)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	logger.Infow("Services ready", "base_url", cfg.OPS.BaseURL, "middlewares", client.Middlewares())
	return s, nil
}

// Close releases the cache store, if any.
func (s *Services) Close() error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Close()
}
