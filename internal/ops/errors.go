package ops

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/oauth2"
)

var (
	ErrAuth        = errors.New("OPS authentication failed")
	ErrNotFound    = errors.New("OPS resource not found")
	ErrRateLimited = errors.New("OPS rate limit exceeded")
	ErrNetwork     = errors.New("OPS network error")
)

// APIError is a non-2xx reply from OPS. Code and Message come from the OPS
// <fault> document when the body carries one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("OPS API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("OPS API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Message: http.StatusText(status), Body: body}
	if doc, err := xmlquery.Parse(bytes.NewReader(body)); err == nil {
		if n := xmlquery.FindOne(doc, "//*[local-name()='fault']/*[local-name()='code']"); n != nil {
			e.Code = strings.TrimSpace(n.InnerText())
		}
		if n := xmlquery.FindOne(doc, "//*[local-name()='fault']/*[local-name()='message']"); n != nil {
			e.Message = strings.TrimSpace(n.InnerText())
		}
	}
	return e
}

// transportError classifies a failed round trip. Token endpoint rejections
// count as authentication failures.
func transportError(err error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
