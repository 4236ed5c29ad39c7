package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/jsonhttp/pkg/httpclient"
	"github.com/samvad-hq/jsonhttp/pkg/jsonhttp"
)

// Entry is a single request declared in a batch file.
type Entry struct {
	ID      string            `json:"id" yaml:"id"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Query   map[string]string `json:"query" yaml:"query"`
	Form    map[string]string `json:"form" yaml:"form"`
	JSON    any               `json:"json" yaml:"json"`
}

type batchFile struct {
	Requests []Entry `json:"requests" yaml:"requests"`
}

// Batch is an ordered, validated set of entries.
type Batch struct {
	Entries []Entry
}

// Load reads a YAML or JSON batch file, keeping entries in file order.
func Load(path string) (*Batch, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes batch file content. ext selects the format; empty tries each.
func Parse(data []byte, ext string) (*Batch, error) {
	file, err := parseBatchFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	seen := make(map[string]struct{}, len(file.Requests))
	entries := make([]Entry, len(file.Requests))
	for i := range file.Requests {
		e := sanitizeEntry(file.Requests[i])
		if e.ID == "" {
			e.ID = fmt.Sprintf("request-%d", i+1)
		}
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := seen[e.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
		entries[i] = e
	}
	return &Batch{Entries: entries}, nil
}

func parseBatchFile(data []byte, ext string) (batchFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file batchFile
		if err := d.fn(data, &file); err != nil {
			errs = append(errs, fmt.Errorf("decode %s requests: %w", d.name, err))
			continue
		}
		return file, nil
	}
	if len(errs) == 0 {
		return batchFile{}, fmt.Errorf("requests file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return batchFile{}, errors.Join(errs...)
}

func sanitizeEntry(e Entry) Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = jsonhttp.DefaultMethod
	}
	e.URL = strings.TrimSpace(e.URL)
	e.Headers = sanitizeMap(e.Headers)
	e.Query = sanitizeMap(e.Query)
	e.Form = sanitizeMap(e.Form)
	return e
}

// sanitizeMap trims keys and drops entries with an empty key.
func sanitizeMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateEntry(e Entry) error {
	if e.URL == "" {
		return fmt.Errorf("url is required for request %q", e.ID)
	}
	if !strings.HasPrefix(e.URL, "http://") && !strings.HasPrefix(e.URL, "https://") {
		return fmt.Errorf("url for request %q must be http or https, got %q", e.ID, e.URL)
	}
	if e.JSON != nil && len(e.Form) > 0 {
		return fmt.Errorf("request %q cannot set both json and form", e.ID)
	}
	return nil
}

// Input converts the entry into an executor input.
func (e Entry) Input() jsonhttp.RequestInput {
	return jsonhttp.NewRequestInput(e.Method, e.URL, httpclient.RequestOptions{
		JSON:       e.JSON,
		Headers:    e.Headers,
		Query:      e.Query,
		FormParams: e.Form,
	})
}

// Inputs returns one executor input per entry, index-aligned with Entries.
func (b *Batch) Inputs() []jsonhttp.RequestInput {
	if b == nil {
		return nil
	}
	out := make([]jsonhttp.RequestInput, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Input()
	}
	return out
}
