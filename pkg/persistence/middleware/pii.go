package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.VariableStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks, on save, the value of every variable whose name
// matches one of the patterns. The original value is never written.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.VariableStore) ports.VariableStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, vars []domain.Variable) error {
	// copy so the caller's slice keeps its values
	masked := append([]domain.Variable(nil), vars...)
	for i, v := range masked {
		if v.Value != "" && m.matches(v.Name) {
			masked[i].Value = Mask
		}
	}
	return m.next.Save(ctx, masked)
}

func (m *redactMiddleware) Load(ctx context.Context) ([]domain.Variable, error) {
	return m.next.Load(ctx)
}

func (m *redactMiddleware) matches(name string) bool {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
