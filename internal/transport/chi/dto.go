package chi

import (
	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/domain/filters"
	"github.com/gfinder/docchat/internal/usecase/pipeline"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeSessionNotFound      = "session_not_found"
	codeStoreUnavailable     = "store_unavailable"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeRankingFailed        = "ranking_failed"
	codeGenerationFailed     = "generation_failed"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

type filtersRequest struct {
	AndTerms     string   `json:"and_terms"`
	OrTerms      string   `json:"or_terms"`
	NotTerms     string   `json:"not_terms"`
	IncludeTitle bool     `json:"include_title"`
	Years        []int    `json:"years"`
	RegionCodes  []string `json:"region_codes"`
	Categories   []int    `json:"categories"`
}

func (r filtersRequest) toState() filters.State {
	return filters.State{
		AndTerms:     r.AndTerms,
		OrTerms:      r.OrTerms,
		NotTerms:     r.NotTerms,
		IncludeTitle: r.IncludeTitle,
		Years:        r.Years,
		RegionCodes:  r.RegionCodes,
		Categories:   r.Categories,
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type sourceItem struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Summary string  `json:"summary,omitempty"`
	Score   float64 `json:"score"`
}

type askResponse struct {
	Outcome string       `json:"outcome"`
	Answer  string       `json:"answer,omitempty"`
	Sources []sourceItem `json:"sources,omitempty"`
}

type historyResponse struct {
	Turns []pipeline.Turn `json:"turns"`
}

func sourcesToItems(ranked []domain.RankedDocument) []sourceItem {
	items := make([]sourceItem, len(ranked))
	for i, rd := range ranked {
		items[i] = sourceItem{
			ID:      rd.Document.ID,
			Title:   rd.Document.Title,
			URL:     rd.Document.URL,
			Summary: rd.Document.Summary,
			Score:   rd.Score,
		}
	}
	return items
}
