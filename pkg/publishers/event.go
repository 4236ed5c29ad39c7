package publishers

import (
	"time"

	"github.com/samvad-hq/jsonhttp/pkg/jsonhttp"
)

// OutcomeOK marks a request that produced a valid JSON payload.
const OutcomeOK = "ok"

// Event represents the outcome of one batch request, published downstream.
type Event struct {
	RunID       string         `json:"run_id"`
	RequestID   string         `json:"request_id"`
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	Outcome     string         `json:"outcome"`
	Error       string         `json:"error,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Changed     bool           `json:"changed"`
	Streak      int            `json:"streak,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// NewEvent constructs an Event for the given request and its result.
func NewEvent(runID, requestID string, in jsonhttp.RequestInput, res jsonhttp.Result) Event {
	evt := Event{
		RunID:       runID,
		RequestID:   requestID,
		Method:      in.Method,
		URL:         in.URL,
		Outcome:     OutcomeOf(res),
		Payload:     res.Payload,
		CompletedAt: time.Now().UTC(),
	}
	if res.Err != nil {
		evt.Error = res.Err.Error()
	}
	return evt
}

// OutcomeOf names a result: "ok" or the error kind.
func OutcomeOf(res jsonhttp.Result) string {
	if res.Err == nil {
		return OutcomeOK
	}
	if kind, ok := jsonhttp.KindOf(res.Err); ok {
		return kind.String()
	}
	return jsonhttp.KindRequestFailed.String()
}
