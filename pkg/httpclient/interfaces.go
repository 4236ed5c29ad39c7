package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	// Header returns the first value of the named header. Lookup is case-insensitive.
	Header(name string) string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations must be safe for concurrent use.
type Client interface {
	Do(ctx context.Context, method, url string, opts RequestOptions) (Response, error)
}
