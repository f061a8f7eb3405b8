package session

import "strings"

// Filter narrows or rewrites a search. Prefix is prepended to every
// effective query; Macros is a semicolon-separated list of name=expansion
// pairs, and any search term written as "name:" expands in place before
// the prefix is applied.
//
// Filters are plain comparable values. The session holds the current one
// by value and compares by equality; it does not own the lists they come
// from.
type Filter struct {
	Name   string
	Prefix string
	Macros string
}

// Apply builds the effective query string for a search term under this
// filter: macros first, then the prefix.
func (f Filter) Apply(term string) string {
	query := f.expandMacros(term)
	if f.Prefix != "" {
		query = strings.TrimSpace(f.Prefix + " " + query)
	}
	return query
}

func (f Filter) expandMacros(term string) string {
	if f.Macros == "" || term == "" {
		return term
	}

	fields := strings.Fields(term)
	for i, tok := range fields {
		for _, pair := range strings.Split(f.Macros, ";") {
			name, expansion, ok := strings.Cut(pair, "=")
			if ok && tok == name+":" {
				fields[i] = expansion
				break
			}
		}
	}
	return strings.Join(fields, " ")
}

// FilterProvider supplies the two ordered filter lists the session cycles
// through: the built-in defaults followed by user-defined filters.
type FilterProvider interface {
	DefaultFilters() []Filter
	UserFilters() []Filter
}

// StaticFilters is a FilterProvider over fixed lists.
type StaticFilters struct {
	Defaults []Filter
	Users    []Filter
}

func (s StaticFilters) DefaultFilters() []Filter { return s.Defaults }
func (s StaticFilters) UserFilters() []Filter    { return s.Users }

// BuiltinFilters returns the default filter list used when no provider is
// configured: everything, files only, folders only.
func BuiltinFilters() []Filter {
	return []Filter{
		{Name: "Everything"},
		{Name: "Files", Prefix: "file:"},
		{Name: "Folders", Prefix: "folder:"},
	}
}
