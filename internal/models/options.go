package models

import "sort"

// Options maps human-readable option names to backend ids. It is built from
// a backend list response and used to resolve a keyboard selection back to
// the id the backend assigned.
type Options map[string]int

// Names returns the option names in a stable order for keyboard rendering.
func (o Options) Names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
