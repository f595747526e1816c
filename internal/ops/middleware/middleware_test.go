package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/cache"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]cache.Entry)}
}

func (m *memStore) Get(_ context.Context, key string) (cache.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, e cache.Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *memStore) Close() error { return nil }

func TestParseThrottlingControl(t *testing.T) {
	quotas := ParseThrottlingControl("idle (images=green:200, inpadoc=yellow:60, other=green:1000, retrieval=red:200, search=black:30)")
	assert.Equal(t, []Quota{
		{Service: ServiceImages, Color: "green", PerMinute: 200},
		{Service: ServiceInpadoc, Color: "yellow", PerMinute: 60},
		{Service: ServiceOther, Color: "green", PerMinute: 1000},
		{Service: ServiceRetrieval, Color: "red", PerMinute: 200},
		{Service: ServiceSearch, Color: "black", PerMinute: 30},
	}, quotas)
	assert.Empty(t, ParseThrottlingControl(""))
}

func TestServiceOf(t *testing.T) {
	cases := map[string]string{
		"/3.2/rest-services/published-data/search/biblio":                  ServiceSearch,
		"/3.2/rest-services/register/search":                               ServiceSearch,
		"/3.2/rest-services/published-data/images/EP/1000000/PA/firstpage": ServiceImages,
		"/3.2/rest-services/family/publication/docdb":                      ServiceInpadoc,
		"/3.2/rest-services/legal/publication/epodoc":                      ServiceInpadoc,
		"/3.2/rest-services/published-data/publication/epodoc/biblio":      ServiceRetrieval,
		"/3.2/rest-services/number-service/application/original/docdb":     ServiceOther,
		"/3.2/rest-services/register/publication/epodoc/biblio":            ServiceOther,
	}
	for path, want := range cases {
		assert.Equal(t, want, ServiceOf(path), path)
	}
}

func TestThrottlerUpdate(t *testing.T) {
	th := NewThrottler(60, nil)
	assert.Equal(t, rate.Limit(1), th.Limit(ServiceSearch))

	th.Update("busy (search=yellow:30, images=black:100)")
	assert.Equal(t, rate.Limit(0.5), th.Limit(ServiceSearch))
	assert.Equal(t, rate.Limit(0), th.Limit(ServiceImages))
	assert.Equal(t, rate.Limit(1), th.Limit(ServiceRetrieval))
}

func TestThrottlerMiddlewareReadsQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderThrottlingControl, "idle (retrieval=green:120)")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	th := NewThrottler(6000, nil)
	client := &http.Client{Transport: Chain(http.DefaultTransport, th.Middleware())}
	resp, err := client.Get(srv.URL + "/rest-services/published-data/publication/epodoc/biblio")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, rate.Limit(2), th.Limit(ServiceRetrieval))
}

func TestThrottlerHonoursContext(t *testing.T) {
	th := NewThrottler(1, nil)
	calls := 0
	rt := th.Middleware().Wrap(RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: http.NoBody}, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://ops.test/rest-services/legal/x", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	// the single burst token is spent, the next one is a minute away
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCacheServesRepeatedRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, "<echo>"+string(body)+"</echo>")
	}))
	defer srv.Close()

	c := NewCache(newMemStore(), time.Hour, nil)
	client := &http.Client{Transport: Chain(http.DefaultTransport, c.Middleware())}

	post := func(body string) (string, string) {
		resp, err := client.Post(srv.URL+"/published-data/publication/epodoc/biblio", "text/plain", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
		return string(data), resp.Header.Get(HeaderCache)
	}

	body, status := post("(EP1000000)")
	assert.Equal(t, "<echo>(EP1000000)</echo>", body)
	assert.Equal(t, "MISS", status)

	body, status = post("(EP1000000)")
	assert.Equal(t, "<echo>(EP1000000)</echo>", body)
	assert.Equal(t, "HIT", status)

	body, _ = post("(EP2000000)")
	assert.Equal(t, "<echo>(EP2000000)</echo>", body)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheSkipsErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := newMemStore()
	client := &http.Client{Transport: Chain(http.DefaultTransport, NewCache(store, time.Hour, nil).Middleware())}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL + "/legal/publication/epodoc")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, int32(2), hits.Load())
	assert.Empty(t, store.entries)
}

func TestCacheSharedFetchSurvivesLeaderCancel(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, "<legal/>")
	}))
	defer srv.Close()
	defer close(release)

	rt := Chain(http.DefaultTransport, NewCache(newMemStore(), time.Hour, nil).Middleware())
	get := func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/legal/publication/epodoc", nil)
		require.NoError(t, err)
		return rt.RoundTrip(req)
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := get(leaderCtx)
		leaderErr <- err
	}()
	<-started

	type result struct {
		resp *http.Response
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		resp, err := get(context.Background())
		follower <- result{resp, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	release <- struct{}{}
	res := <-follower
	require.NoError(t, res.err)
	defer res.resp.Body.Close()
	body, err := io.ReadAll(res.resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<legal/>", string(body))
	assert.Equal(t, "MISS", res.resp.Header.Get(HeaderCache))
	assert.Equal(t, int32(1), hits.Load())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return Middleware{Name: name, Wrap: func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}}
	}
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	mws := []Middleware{mw("cache"), mw("throttle")}
	req, _ := http.NewRequest(http.MethodGet, "http://ops.test/", nil)
	_, err := Chain(base, mws...).RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "throttle", "base"}, order)
	assert.Equal(t, []string{"cache", "throttle"}, Names(mws))
}
