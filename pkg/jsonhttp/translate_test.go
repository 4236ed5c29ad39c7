package jsonhttp

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"golang.org/x/text/language"
)

func TestDefaultTranslatorMatchesSprintf(t *testing.T) {
	tr := DefaultTranslator()
	got := tr.Translate(MsgUnexpectedStatus, 500, 200)
	if want := fmt.Sprintf(MsgUnexpectedStatus, 500, 200); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := tr.Translate(MsgUnsupportedType, "text/plain"); got != "the response content type 'text/plain' is unsupported" {
		t.Fatalf("got %q", got)
	}
}

func TestCatalogTranslatorLocalizesMessages(t *testing.T) {
	tr, err := NewCatalogTranslator(language.French, map[string]string{
		MsgEmptyBody:        "le corps de la réponse est vide",
		MsgUnexpectedStatus: "le code de statut de la réponse est '%d' au lieu de '%d'",
	})
	if err != nil {
		t.Fatalf("NewCatalogTranslator: %v", err)
	}

	v := NewValidator(tr)
	_, err = v.Validate(jsonResponse(200, "application/json", ""))
	if err == nil || err.Error() != "le corps de la réponse est vide" {
		t.Fatalf("empty body message = %v", err)
	}
	_, err = v.Validate(jsonResponse(404, "application/json", "{}"))
	if err == nil || err.Error() != "le code de statut de la réponse est '404' au lieu de '200'" {
		t.Fatalf("status message = %v", err)
	}
	// no entry: key is used as the format
	_, err = v.Validate(jsonResponse(200, "text/plain", "x"))
	if err == nil || err.Error() != "the response content type 'text/plain' is unsupported" {
		t.Fatalf("fallback message = %v", err)
	}
}

func TestExecutorUsesTranslator(t *testing.T) {
	tr := TranslatorFunc(func(key string, args ...any) string { return "T:" + key })
	exec := NewExecutor(
		WithClient(&fakeClient{responses: map[string]*fakeResponse{"x": jsonResponse(200, "application/json", "")}}),
		WithTranslator(tr),
	)

	_, err := exec.ExecuteOne(context.Background(), JSONRequest(http.MethodGet, "x", nil))
	if err == nil || err.Error() != "T:"+MsgEmptyBody {
		t.Fatalf("err = %v", err)
	}
}

func TestNilTranslatorIsSafe(t *testing.T) {
	var v Validator
	_, err := v.Validate(jsonResponse(200, "application/json", ""))
	if err == nil || err.Error() != MsgEmptyBody {
		t.Fatalf("err = %v", err)
	}
}
