// Package filters holds the user-specified narrowing criteria applied
// before a question is asked.
package filters

import "strings"

// State is the full set of narrowing criteria for one conversation.
// The zero value means "no constraint": it must produce a query that
// matches every document.
type State struct {
	AndTerms string
	OrTerms  string
	NotTerms string

	// IncludeTitle widens AND/OR/NOT term matching to the title field
	// in addition to the body text.
	IncludeTitle bool

	Years       []int
	RegionCodes []string
	Categories  []int
}

// AndTokens returns the whitespace-separated AND keywords.
func (s State) AndTokens() []string { return Tokenize(s.AndTerms) }

// OrTokens returns the whitespace-separated OR keywords.
func (s State) OrTokens() []string { return Tokenize(s.OrTerms) }

// NotTokens returns the whitespace-separated NOT keywords.
func (s State) NotTokens() []string { return Tokenize(s.NotTerms) }

// IsEmpty reports whether no constraint of any kind is set.
func (s State) IsEmpty() bool {
	return len(s.AndTokens()) == 0 &&
		len(s.OrTokens()) == 0 &&
		len(s.NotTokens()) == 0 &&
		len(s.Years) == 0 &&
		len(s.RegionCodes) == 0 &&
		len(s.Categories) == 0
}

// Tokenize splits a raw term string into non-empty keywords.
// strings.Fields splits on Unicode whitespace, which covers both the
// half-width space and the full-width space (U+3000) used in Japanese
// input. All-whitespace input yields zero tokens.
func Tokenize(raw string) []string {
	return strings.Fields(raw)
}
