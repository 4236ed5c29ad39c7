package jsonhttp

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/jsonhttp/pkg/httpclient"
)

const defaultTimeout = 30 * time.Second

// Result is the outcome of one request in a batch. Exactly one of Payload and Err is set.
type Result struct {
	Payload Payload
	Err     error
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Executor sends RequestInputs through a transport client and validates the responses.
// It is safe for concurrent use.
type Executor struct {
	mu        sync.Mutex
	client    httpclient.Client
	newClient func() httpclient.Client
	timeout   time.Duration
	validator Validator
	log       Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClient injects the transport client; no default client is ever built.
func WithClient(c httpclient.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithClientFactory sets the constructor used on first use when no client was injected.
func WithClientFactory(fn func() httpclient.Client) Option {
	return func(e *Executor) {
		if fn != nil {
			e.newClient = fn
		}
	}
}

// WithTimeout sets the timeout of the default resty transport.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithTranslator sets the translator used for error messages.
func WithTranslator(tr Translator) Option {
	return func(e *Executor) { e.validator = NewValidator(tr) }
}

// WithLogger sets the logger. Errors are always returned, never only logged.
func WithLogger(log Logger) Option {
	return func(e *Executor) { e.log = ensureLogger(log) }
}

// NewExecutor creates an Executor. Without WithClient the transport is a
// resty client built on first use and kept for the executor's lifetime.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		timeout:   defaultTimeout,
		validator: NewValidator(nil),
		log:       noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.newClient == nil {
		timeout := e.timeout
		e.newClient = func() httpclient.Client { return httpclient.NewRestyClient(timeout) }
	}
	return e
}

// SetClient replaces the transport client used by subsequent calls.
func (e *Executor) SetClient(c httpclient.Client) {
	e.mu.Lock()
	e.client = c
	e.mu.Unlock()
}

func (e *Executor) getClient() httpclient.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		e.client = e.newClient()
	}
	return e.client
}

// ExecuteOne sends in and validates the response. Transport failures become
// KindRequestFailed; validation failures are returned as Validate reports them.
func (e *Executor) ExecuteOne(ctx context.Context, in RequestInput) (Payload, error) {
	req := in.transportRequest()
	return e.classify(req, httpclient.Do(ctx, e.getClient(), req))
}

// ExecuteMany dispatches every input concurrently, waits until all of them are
// terminal, and returns one Result per input in input order. A failing or
// panicking request never affects the others. The error is non-nil only if
// waiting on the batch itself failed, in which case no results are returned.
func (e *Executor) ExecuteMany(ctx context.Context, ins []RequestInput) ([]Result, error) {
	results := make([]Result, len(ins))
	if len(ins) == 0 {
		return results, nil
	}

	reqs := make([]httpclient.Request, len(ins))
	for i, in := range ins {
		reqs[i] = in.transportRequest()
	}

	start := time.Now()
	outcomes, err := httpclient.SettleAll(ctx, e.getClient(), reqs)
	if err != nil {
		return nil, requestFailed(err)
	}

	failed := 0
	for i, outcome := range outcomes {
		payload, err := e.classify(reqs[i], outcome)
		if err != nil {
			failed++
		}
		results[i] = Result{Payload: payload, Err: err}
	}

	e.log.DebugObj("batch settled", "batch_meta", map[string]any{
		"requests":   len(reqs),
		"failed":     failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return results, nil
}

func (e *Executor) classify(req httpclient.Request, outcome httpclient.Outcome) (Payload, error) {
	if outcome.Err != nil {
		e.log.DebugObj("request failed", "request_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  outcome.Err.Error(),
		})
		return nil, requestFailed(outcome.Err)
	}

	payload, err := e.validator.Validate(outcome.Response)
	if err != nil {
		e.log.DebugObj("response rejected", "response_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return nil, err
	}
	return payload, nil
}

// RequestJSON sends body as JSON to url and validates the response.
func (e *Executor) RequestJSON(ctx context.Context, url string, body any, method string) (Payload, error) {
	return e.ExecuteOne(ctx, JSONRequest(method, url, body))
}

// RequestAsyncJSON sends each body to the same url concurrently. Results are
// aligned with bodies.
func (e *Executor) RequestAsyncJSON(ctx context.Context, url string, bodies []any, method string) ([]Result, error) {
	ins := make([]RequestInput, len(bodies))
	for i, body := range bodies {
		ins[i] = JSONRequest(method, url, body)
	}
	return e.ExecuteMany(ctx, ins)
}
