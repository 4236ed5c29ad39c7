package publishers

import (
	"context"
	"fmt"
)

// Builder creates a Publisher from a sink entry.
type Builder func(ctx context.Context, cfg Config, log Logger) (Publisher, error)

// DefaultBuilders returns the builders for every supported sink type.
func DefaultBuilders() map[string]Builder {
	return map[string]Builder{
		TypeHTTP: newHTTPPublisher,
		TypeSQS:  newSQSPublisher,
	}
}

// Build instantiates every entry with its type's builder and routes it through
// the entry's selector.
func Build(ctx context.Context, builders map[string]Builder, cfgs []Config, log Logger) (*Fanout, error) {
	fanout := NewFanout(nil)
	for _, cfg := range cfgs {
		build, ok := builders[cfg.Type]
		if !ok {
			return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		fanout.Add(pub, cfg.Selector())
	}
	return fanout, nil
}
