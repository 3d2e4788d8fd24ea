package listing

import "regexp"

// Rule pairs a case-insensitive pattern with the value it classifies to.
type Rule[T comparable] struct {
	Pattern *regexp.Regexp
	Value   T
}

// Match builds a Rule from a regular expression. The expression is compiled
// case-insensitively and panics if invalid, so rules belong in package-level
// tables that are built once at start-up.
func Match[T comparable](expr string, value T) Rule[T] {
	return Rule[T]{
		Pattern: regexp.MustCompile("(?i)" + expr),
		Value:   value,
	}
}

// Table is an ordered list of rules. The first rule whose pattern matches
// anywhere in the input wins, so narrower synonyms must come after the
// categories that may share a fragment with them.
type Table[T comparable] []Rule[T]

// Lookup classifies text. The boolean is false when no rule matches.
func (t Table[T]) Lookup(text string) (T, bool) {
	for _, r := range t {
		if r.Pattern.MatchString(text) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}
