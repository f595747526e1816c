package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OPS fair-use service classes, as named in the X-Throttling-Control header.
const (
	ServiceImages    = "images"
	ServiceInpadoc   = "inpadoc"
	ServiceOther     = "other"
	ServiceRetrieval = "retrieval"
	ServiceSearch    = "search"
)

const HeaderThrottlingControl = "X-Throttling-Control"

var quotaPattern = regexp.MustCompile(`([a-z]+)=([a-z]+):(\d+)`)

// Quota is one service entry of X-Throttling-Control,
// e.g. "search=green:30" (30 requests per minute).
type Quota struct {
	Service   string
	Color     string
	PerMinute int
}

// ParseThrottlingControl reads a header such as
// "idle (images=green:200, inpadoc=green:60, other=green:1000, retrieval=green:200, search=green:30)".
func ParseThrottlingControl(header string) []Quota {
	var quotas []Quota
	for _, m := range quotaPattern.FindAllStringSubmatch(strings.ToLower(header), -1) {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		quotas = append(quotas, Quota{Service: m[1], Color: m[2], PerMinute: n})
	}
	return quotas
}

// ServiceOf maps a request path to its OPS service class.
func ServiceOf(path string) string {
	switch {
	case strings.Contains(path, "/published-data/search"), strings.Contains(path, "/register/search"):
		return ServiceSearch
	case strings.Contains(path, "/published-data/images"):
		return ServiceImages
	case strings.Contains(path, "/family/"), strings.Contains(path, "/legal/"):
		return ServiceInpadoc
	case strings.Contains(path, "/published-data/"):
		return ServiceRetrieval
	default:
		return ServiceOther
	}
}

// Throttler keeps one limiter per service class and retunes them from the
// quotas OPS reports on every response.
type Throttler struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	initial  rate.Limit
	logger   *zap.SugaredLogger
}

// NewThrottler starts every service at requestsPerMinute until OPS reports
// its own quota.
func NewThrottler(requestsPerMinute int, logger *zap.SugaredLogger) *Throttler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Throttler{
		limiters: make(map[string]*rate.Limiter),
		initial:  perMinute(requestsPerMinute),
		logger:   logger,
	}
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return 0
	}
	return rate.Limit(float64(n) / 60)
}

func (t *Throttler) limiter(service string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[service]
	if !ok {
		l = rate.NewLimiter(t.initial, 1)
		t.limiters[service] = l
	}
	return l
}

// Limit reports the current rate of service.
func (t *Throttler) Limit(service string) rate.Limit {
	return t.limiter(service).Limit()
}

// Update applies an X-Throttling-Control header. A black service is blocked
// until a later response lifts it.
func (t *Throttler) Update(header string) {
	for _, q := range ParseThrottlingControl(header) {
		limit := perMinute(q.PerMinute)
		if q.Color == "black" {
			limit = 0
		}
		l := t.limiter(q.Service)
		if l.Limit() != limit {
			t.logger.Debugw("OPS quota changed", "service", q.Service, "color", q.Color, "per_minute", q.PerMinute)
			l.SetLimit(limit)
		}
	}
}

// Middleware returns the throttling layer.
func (t *Throttler) Middleware() Middleware {
	return Middleware{
		Name: "throttle",
		Wrap: func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				service := ServiceOf(req.URL.Path)
				if err := t.limiter(service).Wait(req.Context()); err != nil {
					return nil, fmt.Errorf("throttle %s: %w", service, err)
				}
				resp, err := next.RoundTrip(req)
				if err != nil {
					return nil, err
				}
				if h := resp.Header.Get(HeaderThrottlingControl); h != "" {
					t.Update(h)
				}
				return resp, nil
			})
		},
	}
}
