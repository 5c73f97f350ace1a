package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Request describes a single outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Query values are coerced to strings; slices become repeated keys.
	Query map[string]any
	// Body is JSON-encoded when non-nil.
	Body any
	// AuthScheme defaults to "Bearer" when Token is set.
	AuthScheme string
	Token      string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations return a *RequestError for responses with status >= 400.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
