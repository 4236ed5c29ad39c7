package httpclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Request describes a single call handed to Go or SettleAll.
type Request struct {
	Method  string
	URL     string
	Options RequestOptions
}

// Outcome is the terminal state of one request: a response or a transport error.
type Outcome struct {
	Response Response
	Err      error
}

// Pending is a handle on a request that is already in flight.
type Pending struct {
	done    chan struct{}
	outcome Outcome
}

// ErrTransportPanic marks an Outcome.Err produced by a panicking transport call.
var ErrTransportPanic = errors.New("transport panicked")

var errNilPending = errors.New("pending request handle is nil")

// Do calls c and turns a panic inside the transport into an ordinary outcome error.
func Do(ctx context.Context, c Client, req Request) Outcome {
	var out Outcome
	if rec := panics.Try(func() {
		out.Response, out.Err = c.Do(ctx, req.Method, req.URL, req.Options)
	}); rec != nil {
		out = Outcome{Err: fmt.Errorf("%w: %v", ErrTransportPanic, rec.Value)}
	}
	return out
}

// Go starts the request on its own goroutine and returns immediately.
func Go(ctx context.Context, c Client, req Request) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.outcome = Do(ctx, c, req)
	}()
	return p
}

// Wait blocks until the request is terminal. Transport failures, panics
// included, live in Outcome.Err; the error is non-nil only for an unusable handle.
func (p *Pending) Wait() (Outcome, error) {
	if p == nil {
		return Outcome{}, errNilPending
	}
	<-p.done
	return p.outcome, nil
}

// Settle waits for every handle, in order, and returns one outcome per handle.
// It never stops at the first failed request. It returns an error, and no
// outcomes, only when waiting on a handle fails.
func Settle(pending []*Pending) ([]Outcome, error) {
	out := make([]Outcome, len(pending))
	var waitErr error
	for i, p := range pending {
		o, err := p.Wait()
		if err != nil {
			if waitErr == nil {
				waitErr = err
			}
			continue
		}
		out[i] = o
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return out, nil
}

// SettleAll dispatches every request before waiting on any of them, then settles.
func SettleAll(ctx context.Context, c Client, reqs []Request) ([]Outcome, error) {
	pending := make([]*Pending, len(reqs))
	for i, req := range reqs {
		pending[i] = Go(ctx, c, req)
	}
	return Settle(pending)
}
