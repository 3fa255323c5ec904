package query

import (
	"strconv"
	"strings"

	"github.com/gfinder/docchat/internal/domain"
)

// matches evaluates a clause against a document in memory. Mirrors the
// semantics the store backend gives the serialized query, so builder tests
// can run against synthetic fixtures without a live index.
func matches(c Clause, d domain.Document) bool {
	switch cl := c.(type) {
	case MatchAll:
		return true

	case Phrase:
		for _, f := range cl.Fields {
			if strings.Contains(fieldText(f, d), cl.Text) {
				return true
			}
		}
		return false

	case Range:
		v, ok := numericField(cl.Field, d)
		if !ok {
			return false
		}
		if cl.GTE != nil && v < *cl.GTE {
			return false
		}
		if cl.LTE != nil && v > *cl.LTE {
			return false
		}
		return true

	case Term:
		v, ok := numericField(cl.Field, d)
		return ok && v == cl.Value

	case TermsSet:
		val := tagField(cl.Field, d)
		for _, want := range cl.Values {
			if val == want {
				return true
			}
		}
		return false

	case Missing:
		_, ok := numericField(cl.Field, d)
		return !ok

	case Bool:
		for _, m := range cl.Must {
			if !matches(m, d) {
				return false
			}
		}
		for _, f := range cl.Filter {
			if !matches(f, d) {
				return false
			}
		}
		for _, n := range cl.MustNot {
			if matches(n, d) {
				return false
			}
		}
		if len(cl.Should) > 0 {
			any := false
			for _, s := range cl.Should {
				if matches(s, d) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		}
		return true
	}
	return false
}

func fieldText(field string, d domain.Document) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldBodyText:
		return d.BodyText
	}
	return ""
}

func numericField(field string, d domain.Document) (float64, bool) {
	switch field {
	case FieldFiscalYearStart:
		return float64(d.FiscalYearStart), d.HasFiscalStart
	case FieldFiscalYearEnd:
		return float64(d.FiscalYearEnd), d.HasFiscalEnd
	}
	return 0, false
}

func tagField(field string, d domain.Document) string {
	switch field {
	case FieldRegionCode:
		return d.RegionCode
	case FieldCategory:
		return strconv.Itoa(d.Category)
	}
	return ""
}
