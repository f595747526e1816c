// Package server exposes the tool service over MCP transports.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/config"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/tools"
)

const Name = "EPO OPS MCP Server"

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"
)

// ShutdownTimeout bounds how long in-flight HTTP requests may finish.
const ShutdownTimeout = 10 * time.Second

var ErrUnknownTransport = errors.New("unknown transport")

// New creates the MCP server with every tool registered.
func New(version string, svc *tools.Service) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	tools.Register(srv, svc)
	return srv
}

// Router mounts srv at path using the http or sse transport, next to /healthz.
func Router(srv *mcp.Server, transport, path string, logger *zap.SugaredLogger) (http.Handler, error) {
	getServer := func(*http.Request) *mcp.Server { return srv }

	var mcpHandler http.Handler
	switch transport {
	case TransportHTTP:
		mcpHandler = mcp.NewStreamableHTTPHandler(getServer, nil)
	case TransportSSE:
		mcpHandler = mcp.NewSSEHandler(getServer, nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))
	r.Get("/healthz", healthz)
	r.Handle(path, mcpHandler)
	return r, nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debugw("HTTP request",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Serve runs srv on cfg.Transport until ctx is cancelled. HTTP transports
// shut down gracefully within ShutdownTimeout.
func Serve(ctx context.Context, srv *mcp.Server, cfg config.Server, logger *zap.SugaredLogger) error {
	if cfg.Transport == TransportStdio {
		logger.Infow("Serving MCP", "transport", cfg.Transport)
		err := srv.Run(ctx, &mcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	handler, err := Router(srv, cfg.Transport, cfg.Path, logger)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Serving MCP", "transport", cfg.Transport, "addr", httpSrv.Addr, "path", cfg.Path)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", httpSrv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	logger.Infow("Shutting down", "timeout", ShutdownTimeout)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Connect opens an in-memory client session on srv. Closing the session
// ends the server side as well.
func Connect(ctx context.Context, srv *mcp.Server, version string) (*mcp.ClientSession, error) {
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, err
	}
	cs, err := mcp.NewClient(&mcp.Implementation{Name: "epo-mcp-cli", Version: version}, nil).
		Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = ss.Close()
		return nil, err
	}
	return cs, nil
}
