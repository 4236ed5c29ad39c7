package jsonhttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samvad-hq/jsonhttp/pkg/httpclient"
)

// Payload is the decoded top-level JSON object of a response body.
type Payload = map[string]any

const (
	mediaTypeJSON       = "application/json"
	mediaTypeAppPrefix  = "application/"
	mediaTypeJSONSuffix = "+json"
)

// Validator checks a response and decodes its JSON body.
type Validator struct {
	tr Translator
}

// NewValidator returns a Validator that builds messages with tr (nil selects the default).
func NewValidator(tr Translator) Validator {
	return Validator{tr: ensureTranslator(tr)}
}

var defaultValidator = NewValidator(nil)

// Validate checks resp with the default translator. See Validator.Validate.
func Validate(resp httpclient.Response) (Payload, error) {
	return defaultValidator.Validate(resp)
}

// Validate accepts resp only if the status is exactly 200, the content type is
// JSON, and the body is a non-empty JSON object. Every failure is an
// *OperationError of kind KindInvalidResponse.
func (v Validator) Validate(resp httpclient.Response) (Payload, error) {
	tr := v.tr
	if tr == nil {
		tr = defaultValidator.tr
	}
	if resp == nil {
		return nil, invalidResponse(tr.Translate(MsgMissingResponse), nil)
	}

	if status := resp.StatusCode(); status != http.StatusOK {
		return nil, invalidResponse(tr.Translate(MsgUnexpectedStatus, status, http.StatusOK), nil)
	}

	contentType := resp.Header("Content-Type")
	if !IsJSONContentType(contentType) {
		return nil, invalidResponse(tr.Translate(MsgUnsupportedType, contentType), nil)
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, invalidResponse(tr.Translate(MsgEmptyBody), nil)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, invalidResponse(err.Error(), err)
	}
	// A literal null decodes without error into a nil map.
	if payload == nil {
		return nil, invalidResponse(tr.Translate(MsgNotObject), nil)
	}
	return payload, nil
}

// IsJSONContentType reports whether contentType is application/json or an
// application/*+json media type such as application/ld+json.
func IsJSONContentType(contentType string) bool {
	if strings.HasPrefix(contentType, mediaTypeJSON) {
		return true
	}
	return strings.HasPrefix(contentType, mediaTypeAppPrefix) && strings.Contains(contentType, mediaTypeJSONSuffix)
}
