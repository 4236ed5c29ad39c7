package publishers

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/jsonhttp/pkg/jsonhttp"
)

var knownOutcomes = map[string]struct{}{
	OutcomeOK:                             {},
	jsonhttp.KindRequestFailed.String():   {},
	jsonhttp.KindInvalidResponse.String(): {},
}

// Selector decides which events a sink receives. The zero value accepts every event.
type Selector struct {
	outcomes    map[string]struct{}
	changedOnly bool
}

// NewSelector builds a Selector from outcome names ("ok", "request-failed",
// "invalid-response"); matching is case-insensitive.
func NewSelector(outcomes []string, changedOnly bool) (Selector, error) {
	sel := Selector{changedOnly: changedOnly}
	for _, o := range outcomes {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "" {
			continue
		}
		if _, ok := knownOutcomes[o]; !ok {
			return Selector{}, fmt.Errorf("unknown outcome %q", o)
		}
		if sel.outcomes == nil {
			sel.outcomes = make(map[string]struct{}, len(outcomes))
		}
		sel.outcomes[o] = struct{}{}
	}
	return sel, nil
}

// Matches reports whether evt should be delivered.
func (s Selector) Matches(evt Event) bool {
	if s.changedOnly && !evt.Changed {
		return false
	}
	if len(s.outcomes) == 0 {
		return true
	}
	_, ok := s.outcomes[evt.Outcome]
	return ok
}
