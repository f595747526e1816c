package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/cache"
)

const HeaderCache = "X-Cache"

// Cache answers repeated requests from a cache.Store. Concurrent misses for
// the same key share one upstream call, which outlives any single waiter's
// cancellation. Only 2xx responses are stored.
type Cache struct {
	store  cache.Store
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.SugaredLogger
}

func NewCache(store cache.Store, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// Middleware returns the caching layer.
func (c *Cache) Middleware() Middleware {
	return Middleware{
		Name: "cache",
		Wrap: func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				return c.roundTrip(next, req)
			})
		},
	}
}

func (c *Cache) roundTrip(next http.RoundTripper, req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req, key, err := keyOf(req)
	if err != nil {
		return nil, err
	}

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warnw("cache read failed", "err", err)
	}
	if ok {
		return toResponse(req, entry, "HIT"), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Shared by every waiter: one caller leaving must not fail the rest.
		fetchCtx, cancel := detach(ctx)
		defer cancel()
		resp, err := next.RoundTrip(req.WithContext(fetchCtx))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		e := cache.Entry{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err := c.store.Set(fetchCtx, key, e, c.ttl); err != nil {
				c.logger.Warnw("cache write failed", "err", err)
			}
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return toResponse(req, res.Val.(cache.Entry), "MISS"), nil
	}
}

// detach drops the caller's cancellation but keeps its deadline, so a
// shared fetch still ends when the client timeout does.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// keyOf hashes method, URL, Accept and body. The body is buffered, so the
// returned request is a clone with a fresh body.
func keyOf(req *http.Request) (*http.Request, string, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read request body: %w", err)
		}
		body = b
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(b))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s\n", req.Method, req.URL.String(), req.Header.Get("Accept"))
	h.Write(body)
	return req, hex.EncodeToString(h.Sum(nil)), nil
}

func toResponse(req *http.Request, e cache.Entry, status string) *http.Response {
	header := http.Header{}
	if e.ContentType != "" {
		header.Set("Content-Type", e.ContentType)
	}
	header.Set(HeaderCache, status)
	header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
