package publishers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported sink types.
const (
	TypeSQS  = "sqs"
	TypeHTTP = "http"
)

// HTTP sink body modes.
const (
	BodyEvent   = "event"
	BodyPayload = "payload"
)

const (
	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Config is one sink entry of the sinks file.
type Config struct {
	ID      string      `json:"id" yaml:"id"`
	Type    string      `json:"type" yaml:"type"`
	Enabled *bool       `json:"enabled" yaml:"enabled"`
	SQS     *SQSConfig  `json:"sqs" yaml:"sqs"`
	HTTP    *HTTPConfig `json:"http" yaml:"http"`

	// Outcomes restricts delivery to these outcomes; empty delivers all.
	Outcomes []string `json:"outcomes" yaml:"outcomes"`

	// ChangedOnly delivers only events whose outcome differs from the previous run.
	ChangedOnly bool `json:"changed_only" yaml:"changed_only"`

	selector Selector
}

// SQSConfig names the queue result events are sent to. A queue URL ending in
// ".fifo" gets per-request message groups.
type SQSConfig struct {
	QueueURL string `json:"queue_url" yaml:"queue_url"`
	Region   string `json:"region" yaml:"region"`
}

// HTTPConfig describes a webhook receiving result events.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`

	// Body is BodyEvent (default) or BodyPayload.
	Body string `json:"body" yaml:"body"`
}

// Selector returns the delivery filter parsed from Outcomes and ChangedOnly.
func (c Config) Selector() Selector { return c.selector }

// EnabledValue reports the enabled flag, defaulting to true.
func (c Config) EnabledValue() bool {
	return c.Enabled == nil || *c.Enabled
}

type sinksFile struct {
	Publishers []Config `json:"publishers" yaml:"publishers"`
}

// LoadConfigs reads the sinks file and returns its enabled entries in file
// order. Sinks are optional: an empty path yields no entries.
func LoadConfigs(path string) ([]Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	return ParseConfigs(raw, filepath.Ext(path))
}

// ParseConfigs decodes sink entries from YAML (.yaml, .yml) or JSON (.json).
// Unknown fields are rejected so a misspelt filter never silently delivers everything.
func ParseConfigs(data []byte, ext string) ([]Config, error) {
	var file sinksFile
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode yaml publishers: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode json publishers: %w", err)
		}
	default:
		return nil, fmt.Errorf("publishers file extension %q not recognized (expected YAML or JSON)", ext)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(file.Publishers))
	enabled := make([]Config, 0, len(file.Publishers))
	for i, entry := range file.Publishers {
		cfg, err := entry.normalize()
		if err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		if cfg.EnabledValue() {
			enabled = append(enabled, cfg)
		}
	}
	return enabled, nil
}

// normalize trims fields, applies defaults, validates the entry and builds its selector.
func (c Config) normalize() (Config, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.ID == "" {
		return c, errors.New("id is required")
	}

	sel, err := NewSelector(c.Outcomes, c.ChangedOnly)
	if err != nil {
		return c, fmt.Errorf("publisher %q: %w", c.ID, err)
	}
	c.selector = sel

	switch c.Type {
	case TypeSQS:
		if c.SQS == nil {
			return c, fmt.Errorf("sqs config required for publisher %q", c.ID)
		}
		q := *c.SQS
		q.QueueURL = strings.TrimSpace(q.QueueURL)
		q.Region = strings.TrimSpace(q.Region)
		if q.QueueURL == "" || q.Region == "" {
			return c, fmt.Errorf("sqs.queue_url and sqs.region are required for publisher %q", c.ID)
		}
		c.SQS = &q
	case TypeHTTP:
		if c.HTTP == nil {
			return c, fmt.Errorf("http config required for publisher %q", c.ID)
		}
		h := *c.HTTP
		h.URL = strings.TrimSpace(h.URL)
		if !strings.HasPrefix(h.URL, "http://") && !strings.HasPrefix(h.URL, "https://") {
			return c, fmt.Errorf("http.url for publisher %q must be http or https", c.ID)
		}
		if h.Method = strings.ToUpper(strings.TrimSpace(h.Method)); h.Method == "" {
			h.Method = httpDefaultMethod
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		switch h.Body = strings.ToLower(strings.TrimSpace(h.Body)); h.Body {
		case "":
			h.Body = BodyEvent
		case BodyEvent, BodyPayload:
		default:
			return c, fmt.Errorf("http.body %q for publisher %q must be %q or %q", h.Body, c.ID, BodyEvent, BodyPayload)
		}
		h.Headers = trimHeaders(h.Headers)
		c.HTTP = &h
	case "":
		return c, fmt.Errorf("type is required for publisher %q", c.ID)
	default:
		return c, fmt.Errorf("unsupported type %q for publisher %q", c.Type, c.ID)
	}
	return c, nil
}

func trimHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
