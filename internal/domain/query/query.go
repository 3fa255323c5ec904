// Package query defines the store-agnostic structured search query: a
// boolean tree of clauses combined via must/should/must-not/filter groups.
// The db layer serializes it into the target store's native query language.
package query

// Canonical index field names.
const (
	FieldTitle           = "title"
	FieldBodyText        = "body_text"
	FieldRegionCode      = "region_code"
	FieldCategory        = "category"
	FieldFiscalYearStart = "fiscal_year_start"
	FieldFiscalYearEnd   = "fiscal_year_end"
)

// Clause is one node of the boolean query tree.
type Clause interface {
	isClause()
}

// MatchAll matches every document.
type MatchAll struct{}

// Phrase requires the exact phrase to occur in at least one of Fields.
type Phrase struct {
	Fields []string
	Text   string
}

// Range constrains a numeric field. Nil bounds are open.
type Range struct {
	Field string
	GTE   *float64
	LTE   *float64
}

// Term requires numeric equality on a field.
type Term struct {
	Field string
	Value float64
}

// TermsSet requires the field value to be one of Values (exact match).
type TermsSet struct {
	Field  string
	Values []string
}

// Missing requires the field to be absent from the document.
type Missing struct {
	Field string
}

// Bool combines sub-clauses: every Must and Filter clause is mandatory,
// at least one Should clause must match when Should is non-empty, and no
// MustNot clause may match. Filter clauses carry no relevance weight.
type Bool struct {
	Must    []Clause
	Should  []Clause
	MustNot []Clause
	Filter  []Clause
}

func (MatchAll) isClause() {}
func (Phrase) isClause()   {}
func (Range) isClause()    {}
func (Term) isClause()     {}
func (TermsSet) isClause() {}
func (Missing) isClause()  {}
func (Bool) isClause()     {}

// IsEmpty reports whether the bool node carries no clauses.
func (b Bool) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0 && len(b.Filter) == 0
}

func ptr(f float64) *float64 { return &f }
