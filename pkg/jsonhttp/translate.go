package jsonhttp

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys used to build error messages. They double as the default
// English format strings, so a catalog only needs entries for other languages.
const (
	MsgUnexpectedStatus = "the response status code is '%d' instead of the expected '%d'"
	MsgUnsupportedType  = "the response content type '%s' is unsupported"
	MsgEmptyBody        = "the body of the response is empty"
	MsgNotObject        = "the body of the response is not a JSON object"
	MsgMissingResponse  = "no response was received"
)

// Translator renders a message key with its substitution values.
type Translator interface {
	Translate(key string, args ...any) string
}

// TranslatorFunc adapts a plain function to Translator.
type TranslatorFunc func(key string, args ...any) string

func (f TranslatorFunc) Translate(key string, args ...any) string { return f(key, args...) }

type printerTranslator struct {
	tag  language.Tag
	opts []message.Option
}

// DefaultTranslator renders keys as English format strings.
func DefaultTranslator() Translator {
	return printerTranslator{tag: language.English}
}

// NewCatalogTranslator builds a Translator for tag from key -> localized format pairs.
// Keys missing from messages fall back to the key itself.
func NewCatalogTranslator(tag language.Tag, messages map[string]string) (Translator, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range messages {
		if err := b.SetString(tag, key, msg); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", key, err)
		}
	}
	return printerTranslator{tag: tag, opts: []message.Option{message.Catalog(b)}}, nil
}

func (t printerTranslator) Translate(key string, args ...any) string {
	return message.NewPrinter(t.tag, t.opts...).Sprintf(key, args...)
}

func ensureTranslator(tr Translator) Translator {
	if tr == nil {
		return DefaultTranslator()
	}
	return tr
}
