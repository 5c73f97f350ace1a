package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cast"
)

// Option customizes the resty client built by NewRestyClient.
type Option func(*resty.Client)

// WithTransport swaps the underlying round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) {
		if rt != nil {
			c.SetTransport(rt)
		}
	}
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *resty.Client) {
		if len(headers) > 0 {
			c.SetHeaders(headers)
		}
	}
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	c := newRestyBaseClient(timeout)
	for _, opt := range opts {
		opt(c)
	}
	return &RestyClient{client: c}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// A zero timeout leaves the client without one.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do performs a single HTTP request. Responses with status >= 400 are
// returned as *RequestError alongside the response.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	req := r.client.R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if len(in.Query) > 0 {
		req.SetQueryParamsFromValues(queryValues(in.Query))
	}
	if in.Body != nil {
		req.SetBody(in.Body)
	}
	if in.Token != "" {
		if in.AuthScheme != "" {
			req.SetAuthScheme(in.AuthScheme)
		}
		req.SetAuthToken(in.Token)
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	out := &restyResponseAdapter{resp: resp}
	if resp.IsError() {
		return out, newRequestError(method, in.URL, resp.StatusCode(), resp.Status(), resp.Header(), resp.Body())
	}
	return out, nil
}

// queryValues flattens attribute maps into url.Values.
func queryValues(attrs map[string]any) url.Values {
	values := make(url.Values, len(attrs))
	for k, v := range attrs {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				values.Add(k, cast.ToString(rv.Index(i).Interface()))
			}
			continue
		}
		values.Set(k, cast.ToString(v))
	}
	return values
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
