package engine

import (
	"strings"

	"github.com/lixenwraith/sndfx/source"
)

// CategoryPolicy decides which sound categories bypass effects processing
// Checked once when a channel is attached
type CategoryPolicy struct {
	exempt map[source.Category]struct{}
}

// NewCategoryPolicy builds a policy from category names, case-insensitive
func NewCategoryPolicy(names []string) *CategoryPolicy {
	p := &CategoryPolicy{exempt: make(map[source.Category]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			p.exempt[source.Category(n)] = struct{}{}
		}
	}
	return p
}

// Exempt reports whether sounds of category c are left untouched
func (p *CategoryPolicy) Exempt(c source.Category) bool {
	_, ok := p.exempt[source.Category(strings.ToLower(string(c)))]
	return ok
}
