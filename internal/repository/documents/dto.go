package documents

import (
	"strconv"
	"strings"

	"github.com/gfinder/docchat/internal/db"
	"github.com/gfinder/docchat/internal/domain"
)

// parseDocuments converts raw search entries into domain documents,
// preserving the store's relevance order.
func parseDocuments(sr *db.SearchResult, keyPrefix string) []domain.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docs = append(docs, parseEntry(entry, keyPrefix))
	}
	return docs
}

func parseEntry(entry db.SearchEntry, keyPrefix string) domain.Document {
	doc := domain.Document{
		ID:         strings.TrimPrefix(entry.Key, keyPrefix),
		Title:      entry.Fields["title"],
		URL:        entry.Fields["url"],
		BodyText:   entry.Fields["body_text"],
		Summary:    entry.Fields["summary"],
		RegionCode: entry.Fields["region_code"],
	}

	if v, ok := parseIntField(entry.Fields, "fiscal_year_start"); ok {
		doc.FiscalYearStart = v
		doc.HasFiscalStart = true
	}
	if v, ok := parseIntField(entry.Fields, "fiscal_year_end"); ok {
		doc.FiscalYearEnd = v
		doc.HasFiscalEnd = true
	}
	if v, ok := parseIntField(entry.Fields, "category"); ok {
		doc.Category = v
	}

	return doc
}

func parseIntField(fields map[string]string, name string) (int, bool) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, false
	}
	// Numeric hash fields may come back as floats.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
