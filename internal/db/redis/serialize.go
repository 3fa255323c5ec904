package redis

import (
	"fmt"
	"strings"

	"github.com/gfinder/docchat/internal/domain/query"
)

// Serialize translates a structured query tree into the FT.SEARCH query
// language (dialect 2).
func Serialize(c query.Clause) string {
	s := serializeClause(c, false)
	if s == "" {
		return "*"
	}
	return s
}

func serializeClause(c query.Clause, nested bool) string {
	switch cl := c.(type) {
	case query.MatchAll:
		return "*"

	case query.Phrase:
		return fmt.Sprintf("@%s:%q", strings.Join(cl.Fields, "|"), phraseEscaper.Replace(cl.Text))

	case query.Range:
		minBound := "-inf"
		maxBound := "+inf"
		if cl.GTE != nil {
			minBound = fmt.Sprintf("%g", *cl.GTE)
		}
		if cl.LTE != nil {
			maxBound = fmt.Sprintf("%g", *cl.LTE)
		}
		return fmt.Sprintf("@%s:[%s %s]", cl.Field, minBound, maxBound)

	case query.Term:
		return fmt.Sprintf("@%s:[%g %g]", cl.Field, cl.Value, cl.Value)

	case query.TermsSet:
		escaped := make([]string, len(cl.Values))
		for i, v := range cl.Values {
			escaped[i] = tagEscaper.Replace(v)
		}
		return fmt.Sprintf("@%s:{%s}", cl.Field, strings.Join(escaped, "|"))

	case query.Missing:
		return fmt.Sprintf("ismissing(@%s)", cl.Field)

	case query.Bool:
		return serializeBool(cl, nested)
	}
	return ""
}

func serializeBool(b query.Bool, nested bool) string {
	var parts []string

	for _, m := range b.Must {
		parts = append(parts, serializeClause(m, true))
	}
	// Filter clauses are conjunctive like must; RediSearch has no
	// scoring-free group, which is fine since the ranker reorders anyway.
	for _, f := range b.Filter {
		parts = append(parts, serializeClause(f, true))
	}

	if len(b.Should) > 0 {
		shouldParts := make([]string, len(b.Should))
		for i, sc := range b.Should {
			shouldParts[i] = serializeClause(sc, true)
		}
		parts = append(parts, "("+strings.Join(shouldParts, " | ")+")")
	}

	for _, n := range b.MustNot {
		parts = append(parts, "-"+serializeClause(n, true))
	}

	if len(parts) == 0 {
		return "*"
	}

	joined := strings.Join(parts, " ")
	if nested && len(parts) > 1 {
		return "(" + joined + ")"
	}
	return joined
}

// phraseEscaper neutralizes characters that would terminate or alter an
// exact-phrase token.
var phraseEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

// tagEscaper escapes TAG syntax characters per the RediSearch query grammar.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
