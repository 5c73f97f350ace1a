package sinks

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingSink struct {
	stubSink
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Sink{
		&stubSink{id: "ok", typ: "http"},
		&stubSink{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sinks to be skipped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	closer := &closingSink{stubSink{id: "ps", typ: TypePubSub}}
	fanout := NewFanout([]Sink{&stubSink{id: "plain"}, closer})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closer.closed {
		t.Fatalf("expected closer sink to be closed")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	sinks, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com", Method: "POST"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("expected 1 sink, got %d", len(sinks))
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	if _, err := BuildAll(context.Background(), DefaultRegistry(), []SinkConfig{{ID: "k", Type: "kafka"}}, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}
