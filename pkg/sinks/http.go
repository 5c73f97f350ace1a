package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/etdte/svc-http/pkg/httpclient"
)

type httpSink struct {
	id     string
	method string
	url    string
	client httpclient.Client
	log    Logger
}

func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpSink{
		id:     cfg.ID,
		method: cfg.HTTP.Method,
		url:    cfg.HTTP.URL,
		client: httpclient.NewRestyClient(timeout, httpclient.WithHeaders(cfg.HTTP.Headers)),
		log:    loggerOrDiscard(log),
	}, nil
}

func (h *httpSink) ID() string   { return h.id }
func (h *httpSink) Type() string { return TypeHTTP }

// Publish posts the event as JSON. Failure statuses surface as
// *httpclient.RequestError.
func (h *httpSink) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    evt,
	})
	if err != nil {
		return err
	}
	h.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id": h.id,
		"status":  resp.StatusCode(),
	})
	return nil
}
