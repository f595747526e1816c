// Package middleware provides the http.RoundTripper layers that can sit in
// front of the OPS client: response caching and fair-use throttling.
package middleware

import "net/http"

// Middleware wraps the next round tripper.
type Middleware struct {
	Name string
	Wrap func(next http.RoundTripper) http.RoundTripper
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base so that mws[0] sees a request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i].Wrap(rt)
	}
	return rt
}

// Names lists middleware names in order.
func Names(mws []Middleware) []string {
	names := make([]string, 0, len(mws))
	for _, m := range mws {
		names = append(names, m.Name)
	}
	return names
}
