package httpclient

import "strings"

// RequestOptions is the option bag forwarded to the transport for a single request.
type RequestOptions struct {
	// JSON is encoded with encoding/json, whatever its type, and sent with a JSON content type when non-nil.
	JSON any
	// Body is sent as-is when JSON is nil.
	Body    []byte
	Headers map[string]string
	Query   map[string]string
	// FormParams are sent url-encoded when neither JSON nor Body is set.
	FormParams map[string]string
}

// headerValue returns the value of the named header using a case-insensitive match.
func (o RequestOptions) headerValue(name string) (string, bool) {
	for k, v := range o.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
