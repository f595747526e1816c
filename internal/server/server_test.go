package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/config"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/tools"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/tools/mocks"
)

func newServer(t *testing.T) *mcp.Server {
	t.Helper()
	svc, err := tools.NewService(
		mocks.NewMockPatentClient(gomock.NewController(t)),
		zap.NewNop().Sugar(),
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	require.NoError(t, err)
	return New("v0.0.0-test", svc)
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestConnectInMemory(t *testing.T) {
	cs, err := Connect(context.Background(), newServer(t), "v0.0.0-test")
	require.NoError(t, err)
	defer cs.Close()

	assert.Equal(t, Name, cs.InitializeResult().ServerInfo.Name)
	assert.ElementsMatch(t, tools.Names(), toolNames(t, cs))
}

func TestRouterHealthz(t *testing.T) {
	handler, err := Router(newServer(t), TransportHTTP, "/mcp", zap.NewNop().Sugar())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRouterRejectsUnknownTransport(t *testing.T) {
	_, err := Router(newServer(t), "carrier-pigeon", "/mcp", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrUnknownTransport)

	_, err = Router(newServer(t), TransportStdio, "/mcp", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

func TestStreamableHTTPListsTools(t *testing.T) {
	handler, err := Router(newServer(t), TransportHTTP, "/mcp", zap.NewNop().Sugar())
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	ctx := context.Background()
	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.0"}, nil).
		Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer cs.Close()

	assert.ElementsMatch(t, tools.Names(), toolNames(t, cs))
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, newServer(t), config.Server{
			Host:      "127.0.0.1",
			Port:      0,
			Transport: TransportHTTP,
			Path:      "/mcp",
		}, zap.NewNop().Sugar())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("Serve did not return after cancellation")
	}
}
