package weekly

import (
	"maps"
	"slices"
	"strings"
)

// Expansion records which category rows are expanded, keyed by category
// name. It belongs to whoever renders the breakdown and survives report
// recomputation; Toggle returns a new value instead of mutating.
type Expansion map[string]bool

// ExpansionFrom builds the state from a list of expanded names.
func ExpansionFrom(names []string) Expansion {
	e := make(Expansion, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			e[n] = true
		}
	}
	return e
}

// Expanded reports whether name is expanded. Unknown names are collapsed.
func (e Expansion) Expanded(name string) bool {
	return e[name]
}

// Toggle flips name and returns the resulting state.
func (e Expansion) Toggle(name string) Expansion {
	next := maps.Clone(e)
	if next == nil {
		next = Expansion{}
	}
	if next[name] {
		delete(next, name)
	} else {
		next[name] = true
	}
	return next
}

// Names returns the expanded names in sorted order.
func (e Expansion) Names() []string {
	names := make([]string, 0, len(e))
	for n, open := range e {
		if open {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}
