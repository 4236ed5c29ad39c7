package publishers

import (
	"context"
	"errors"
	"fmt"
)

type route struct {
	pub Publisher
	sel Selector
}

// Fanout delivers result events to every sink whose selector matches.
type Fanout struct {
	routes []route
}

// NewFanout builds a dispatcher that sends every event to each of pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		f.Add(p, Selector{})
	}
	return f
}

// Add routes events accepted by sel to pub. A nil pub is ignored.
func (f *Fanout) Add(pub Publisher, sel Selector) {
	if pub == nil {
		return
	}
	f.routes = append(f.routes, route{pub: pub, sel: sel})
}

// Publish forwards evt to the matching sinks, stopping once ctx is done. It
// returns how many sinks accepted the event; unmatched sinks are not counted.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}

	var errs []error
	delivered := 0
	for _, r := range f.routes {
		if !r.sel.Matches(evt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", evt.RequestID, err))
			break
		}
		if err := r.pub.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s] event %s: %w", r.pub.Type(), r.pub.ID(), evt.RequestID, err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of routed sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}
