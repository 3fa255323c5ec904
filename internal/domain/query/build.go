package query

import (
	"sort"
	"strconv"

	"github.com/gfinder/docchat/internal/domain/filters"
)

// Build translates filter state into a structured boolean query.
// Pure and total: malformed input (empty or all-whitespace term strings)
// contributes no clauses, and a fully empty state yields MatchAll.
func Build(f filters.State) Clause {
	var b Bool

	for _, tok := range f.AndTokens() {
		b.Must = append(b.Must, termClause(tok, f.IncludeTitle))
	}

	// The OR disjunction is itself required as a whole when present,
	// independent of any AND tokens.
	for _, tok := range f.OrTokens() {
		b.Should = append(b.Should, termClause(tok, f.IncludeTitle))
	}

	for _, tok := range f.NotTokens() {
		b.MustNot = append(b.MustNot, termClause(tok, f.IncludeTitle))
	}

	if c, ok := yearClause(f.Years); ok {
		b.Filter = append(b.Filter, c)
	}

	if len(f.RegionCodes) > 0 {
		b.Filter = append(b.Filter, TermsSet{
			Field:  FieldRegionCode,
			Values: sortedStrings(f.RegionCodes),
		})
	}

	if len(f.Categories) > 0 {
		values := make([]string, 0, len(f.Categories))
		for _, c := range sortedInts(f.Categories) {
			values = append(values, strconv.Itoa(c))
		}
		b.Filter = append(b.Filter, TermsSet{Field: FieldCategory, Values: values})
	}

	if b.IsEmpty() {
		return MatchAll{}
	}
	return b
}

// termClause matches one keyword against the body, or against body-or-title
// when includeTitle is set.
func termClause(token string, includeTitle bool) Clause {
	fields := []string{FieldBodyText}
	if includeTitle {
		fields = []string{FieldBodyText, FieldTitle}
	}
	return Phrase{Fields: fields, Text: token}
}

// yearClause builds the fiscal-year disjunction: a document matches year Y
// when fiscal_year_start <= Y <= fiscal_year_end, or when
// fiscal_year_start == Y and fiscal_year_end is absent (open-ended record).
// Any selected year matching is sufficient.
func yearClause(years []int) (Clause, bool) {
	if len(years) == 0 {
		return nil, false
	}

	var should []Clause
	for _, y := range sortedInts(years) {
		year := float64(y)
		should = append(should,
			Bool{Must: []Clause{
				Range{Field: FieldFiscalYearStart, LTE: ptr(year)},
				Range{Field: FieldFiscalYearEnd, GTE: ptr(year)},
			}},
			Bool{Must: []Clause{
				Term{Field: FieldFiscalYearStart, Value: year},
				Missing{Field: FieldFiscalYearEnd},
			}},
		)
	}

	return Bool{Should: should}, true
}

// sortedInts copies and sorts a set of ints so query output is
// deterministic regardless of input order.
func sortedInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	return out
}

func sortedStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
