package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/jsonhttp/pkg/httpclient"
)

// Headers set on every webhook delivery.
const (
	HeaderRunID     = "X-Jsonfetch-Run"
	HeaderRequestID = "X-Jsonfetch-Request"
	HeaderOutcome   = "X-Jsonfetch-Outcome"
)

type httpPublisher struct {
	id      string
	method  string
	url     string
	body    string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		body:    cfg.HTTP.Body,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish posts the event, or only its decoded payload in BodyPayload mode.
// Failed requests have no payload, so they are posted as an error envelope.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	headers := make(map[string]string, len(h.headers)+3)
	for k, v := range h.headers {
		headers[k] = v
	}
	headers[HeaderRunID] = evt.RunID
	headers[HeaderRequestID] = evt.RequestID
	headers[HeaderOutcome] = evt.Outcome

	resp, err := h.client.Do(ctx, h.method, h.url, httpclient.RequestOptions{
		JSON:    h.bodyFor(evt),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return fmt.Errorf("http response status %d: %s", code, readBodySnippet(resp.Body()))
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"request_id":   evt.RequestID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func (h *httpPublisher) bodyFor(evt Event) any {
	if h.body != BodyPayload {
		return evt
	}
	if evt.Payload != nil {
		return evt.Payload
	}
	return map[string]string{
		"request_id": evt.RequestID,
		"outcome":    evt.Outcome,
		"error":      evt.Error,
	}
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
