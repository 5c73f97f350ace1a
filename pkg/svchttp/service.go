// Package svchttp provides a small HTTP service base with bearer-token
// authentication and a pluggable configuration provider.
package svchttp

import (
	"context"
	"sync"

	"github.com/etdte/svc-http/pkg/httpclient"
)

// DefaultTokenType is the Authorization scheme used unless overridden.
const DefaultTokenType = "Bearer"

// Option customizes a Service.
type Option func(*Service)

// WithClient replaces the default resty-backed client.
func WithClient(client httpclient.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log Logger) Option {
	return func(s *Service) {
		s.log = ensureLogger(log)
	}
}

// WithTokenType overrides the Authorization scheme.
func WithTokenType(tokenType string) Option {
	return func(s *Service) {
		s.tokenType = tokenType
	}
}

// Service issues authenticated requests on behalf of a Configuration.
// Callers compose it by embedding *Service in their own types.
type Service struct {
	configuration Configuration
	client        httpclient.Client
	log           Logger

	mu        sync.RWMutex
	tokenType string
}

// New builds a Service. configuration may be nil, in which case no
// readiness check is made and requests carry no Authorization header.
func New(configuration Configuration, opts ...Option) *Service {
	s := &Service{
		configuration: configuration,
		client:        httpclient.NewRestyClient(0),
		log:           noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configuration returns the configuration the service was built with.
func (s *Service) Configuration() Configuration { return s.configuration }

// HasConfiguration reports whether a configuration was supplied.
func (s *Service) HasConfiguration() bool { return s.configuration != nil }

// SetTokenType overrides the Authorization scheme for subsequent requests.
// An empty value restores the default resolution.
func (s *Service) SetTokenType(tokenType string) {
	s.mu.Lock()
	s.tokenType = tokenType
	s.mu.Unlock()
}

// TokenType returns the scheme the next request will use: the service
// override, then the configuration's own TokenType, then DefaultTokenType.
func (s *Service) TokenType() string {
	s.mu.RLock()
	tokenType := s.tokenType
	s.mu.RUnlock()
	if tokenType != "" {
		return tokenType
	}
	if typer, ok := s.configuration.(TokenTyper); ok {
		if t := typer.TokenType(); t != "" {
			return t
		}
	}
	return DefaultTokenType
}

// Get issues a GET request; params are sent as query-string parameters.
func (s *Service) Get(ctx context.Context, path string, params map[string]any) (Response, error) {
	return s.Request(ctx, MethodGet, path, params)
}

// Post issues a POST request with body encoded as JSON.
func (s *Service) Post(ctx context.Context, path string, body map[string]any) (Response, error) {
	return s.Request(ctx, MethodPost, path, body)
}

// Put issues a PUT request with body encoded as JSON.
func (s *Service) Put(ctx context.Context, path string, body map[string]any) (Response, error) {
	return s.Request(ctx, MethodPut, path, body)
}

// Delete issues a DELETE request.
func (s *Service) Delete(ctx context.Context, path string) (Response, error) {
	return s.Request(ctx, MethodDelete, path, nil)
}

// Request issues a single request for method. Failure statuses surface as
// *RequestError, returned unchanged.
func (s *Service) Request(ctx context.Context, method Method, path string, attrs map[string]any) (Response, error) {
	if s.HasConfiguration() && !s.configuration.Settled() {
		s.log.WarnObj("http service not settled", "http_request", map[string]any{
			"method": method.String(),
			"url":    path,
		})
		return nil, ErrNotSettled
	}

	req := httpclient.Request{
		Method: method.String(),
		URL:    path,
	}
	if s.HasConfiguration() {
		req.Token = s.configuration.Token()
		req.AuthScheme = s.TokenType()
	}
	if len(attrs) > 0 {
		if method == MethodGet {
			req.Query = attrs
		} else if method != MethodDelete {
			req.Body = attrs
		}
	}

	s.log.DebugObj("http service request", "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL,
	})

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.log.WarnObj("http service request failed", "http_request_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return nil, err
	}
	return normalize(resp.Body()), nil
}
