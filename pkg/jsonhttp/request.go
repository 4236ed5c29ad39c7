package jsonhttp

import (
	"net/http"
	"strings"

	"github.com/samvad-hq/jsonhttp/pkg/httpclient"
)

// DefaultMethod is used when a RequestInput carries no method.
const DefaultMethod = http.MethodPost

// RequestInput describes one request: where to send it and with which transport options.
type RequestInput struct {
	URL     string
	Method  string
	Options httpclient.RequestOptions
}

// NewRequestInput builds a RequestInput, normalizing the method.
func NewRequestInput(method, url string, opts httpclient.RequestOptions) RequestInput {
	return RequestInput{
		URL:     strings.TrimSpace(url),
		Method:  normalizeMethod(method),
		Options: opts,
	}
}

// JSONRequest builds a RequestInput whose body is body encoded as JSON.
func JSONRequest(method, url string, body any) RequestInput {
	return NewRequestInput(method, url, httpclient.RequestOptions{JSON: body})
}

func (in RequestInput) transportRequest() httpclient.Request {
	return httpclient.Request{
		Method:  normalizeMethod(in.Method),
		URL:     in.URL,
		Options: in.Options,
	}
}

func normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return DefaultMethod
	}
	return method
}
