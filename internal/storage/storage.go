// Package storage keeps the last outcome of every named request across runs.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Record is the stored outcome of one request execution.
type Record struct {
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	ExpiresAt  time.Time `json:"expires_at"`

	// Streak counts consecutive recordings with this Outcome, this one included.
	Streak int `json:"streak"`
}

// Store tracks the last outcome per request id.
type Store interface {
	Close() error
	// Swap stores rec as the latest outcome for id and returns the record it
	// replaced, if one was present and unexpired. The stored copy, with its
	// streak and expiry filled in, is returned as current.
	Swap(id string, rec Record) (current, previous Record, found bool, err error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// advance fills in the streak of next given the record it replaces.
func advance(next, prev Record, found bool) Record {
	next.Streak = 1
	if found && prev.Outcome == next.Outcome {
		next.Streak = prev.Streak + 1
	}
	return next
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) Swap(_ string, rec Record) (Record, Record, bool, error) {
	return advance(rec, Record{}, false), Record{}, false, nil
}
