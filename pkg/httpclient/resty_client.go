package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const contentTypeJSON = "application/json"

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
// A non-positive timeout leaves the transport without a client-level deadline.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do performs an HTTP request with the given method, URL and options.
func (r *RestyClient) Do(ctx context.Context, method, url string, opts RequestOptions) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := r.client.R().SetContext(ctx)
	if len(opts.Headers) > 0 {
		req.SetHeaders(opts.Headers)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParams(opts.Query)
	}

	switch {
	case opts.JSON != nil:
		body, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		if _, ok := opts.headerValue("Content-Type"); !ok {
			req.SetHeader("Content-Type", contentTypeJSON)
		}
		req.SetBody(body)
	case opts.Body != nil:
		req.SetBody(opts.Body)
	case len(opts.FormParams) > 0:
		req.SetFormData(opts.FormParams)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte              { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int           { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header(name string) string { return r.resp.Header().Get(name) }
