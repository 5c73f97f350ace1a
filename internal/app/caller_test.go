package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etdte/svc-http/internal/config"
	"github.com/etdte/svc-http/pkg/httpclient"
	"github.com/etdte/svc-http/pkg/sinks"
	"github.com/etdte/svc-http/pkg/svchttp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	profilesFile := writeFile(t, dir, "profiles.yaml", `
profiles:
  - id: billing
    base_url: `+apiURL+`
    path: v1
    token_type: Token
  - id: open
    base_url: `+apiURL+`
    token: inline
`)
	return &config.Config{
		ProfilesFile:         profilesFile,
		StorageType:          "bbolt",
		BBoltPath:            filepath.Join(dir, "tokens.db"),
		TokenTTL:             time.Hour,
		TokenCleanupInterval: time.Hour,
	}
}

func TestCallerCallsWithStoredToken(t *testing.T) {
	var gotAuth, gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"bar":"baz"}`))
	}))
	defer api.Close()

	caller, err := NewCaller(context.Background(), testConfig(t, api.URL), nil)
	if err != nil {
		t.Fatalf("NewCaller: %v", err)
	}
	defer caller.Close()

	_, err = caller.Call(context.Background(), "billing", svchttp.MethodGet, "invoices", nil, false)
	if !svchttp.IsConfigurationError(err) {
		t.Fatalf("expected configuration error without token, got %v", err)
	}

	if err := caller.SetToken("billing", "secret"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	resp, err := caller.Call(context.Background(), "billing", svchttp.MethodGet, "invoices", nil, false)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp["bar"] != "baz" {
		t.Fatalf("unexpected response %v", resp)
	}
	if gotAuth != "Token secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/invoices" {
		t.Fatalf("path = %q", gotPath)
	}

	if err := caller.ForgetToken("billing"); err != nil {
		t.Fatalf("ForgetToken: %v", err)
	}
	if _, err := caller.Call(context.Background(), "billing", svchttp.MethodGet, "invoices", nil, false); !svchttp.IsConfigurationError(err) {
		t.Fatalf("expected configuration error after forgetting token, got %v", err)
	}
}

func TestCallerUsesAbsolutePathVerbatim(t *testing.T) {
	var gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer api.Close()

	caller, err := NewCaller(context.Background(), testConfig(t, api.URL), nil)
	if err != nil {
		t.Fatalf("NewCaller: %v", err)
	}
	defer caller.Close()

	resp, err := caller.Call(context.Background(), "open", svchttp.MethodDelete, api.URL+"/other", nil, false)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotPath != "/other" {
		t.Fatalf("path = %q", gotPath)
	}
	if v, wrapped := resp.Result(); !wrapped || v != nil {
		t.Fatalf("expected empty result, got %v", resp)
	}
}

func TestCallerRejectsUnknownProfile(t *testing.T) {
	caller, err := NewCaller(context.Background(), testConfig(t, "https://api.example.com"), nil)
	if err != nil {
		t.Fatalf("NewCaller: %v", err)
	}
	defer caller.Close()

	if _, err := caller.Call(context.Background(), "nope", svchttp.MethodGet, "", nil, false); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if err := caller.SetToken("nope", "x"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if len(caller.Profiles()) != 2 {
		t.Fatalf("expected 2 profiles")
	}
}

func TestCallerPublishesResults(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text"))
	}))
	defer api.Close()

	var mu sync.Mutex
	var events []sinks.Event
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt sinks.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	}))
	defer hook.Close()

	cfg := testConfig(t, api.URL)
	cfg.SinksFile = writeFile(t, t.TempDir(), "sinks.yaml", `
sinks:
  - id: hook
    type: http
    http:
      url: `+hook.URL+`
`)

	caller, err := NewCaller(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewCaller: %v", err)
	}
	defer caller.Close()

	if _, err := caller.Call(context.Background(), "open", svchttp.MethodPost, "items", map[string]any{"foo": "bar"}, false); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, err := caller.Call(context.Background(), "open", svchttp.MethodPost, "items", map[string]any{"foo": "bar"}, true); err != nil {
		t.Fatalf("Call: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 published event, got %d", len(events))
	}
	evt := events[0]
	if evt.ProfileID != "open" || evt.Method != http.MethodPost || evt.URL != api.URL+"/items" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Result["result"] != "plain text" {
		t.Fatalf("unexpected result %v", evt.Result)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestCallerUsesInjectedHTTPClient(t *testing.T) {
	var gotURL, gotAuth string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`[1,2]`)),
			Request:    r,
		}, nil
	})

	client := httpclient.NewRestyClient(0, httpclient.WithTransport(rt))
	caller, err := NewCaller(context.Background(), testConfig(t, "https://api.example.com"), nil, WithHTTPClient(client))
	if err != nil {
		t.Fatalf("NewCaller: %v", err)
	}
	defer caller.Close()

	resp, err := caller.Call(context.Background(), "open", svchttp.MethodGet, "items", nil, false)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotURL != "https://api.example.com/items" || gotAuth != "Bearer inline" {
		t.Fatalf("unexpected request url=%q auth=%q", gotURL, gotAuth)
	}
	v, wrapped := resp.Result()
	list, ok := v.([]any)
	if !wrapped || !ok || len(list) != 2 {
		t.Fatalf("expected wrapped array, got %v", resp)
	}
}
