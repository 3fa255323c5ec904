package pipeline

import (
	"context"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/domain/query"
)

// DocumentSearcher retrieves documents for a structured query.
type DocumentSearcher interface {
	Search(ctx context.Context, q query.Clause, limit int) ([]domain.Document, error)
}

// Ranker reorders retrieved documents by semantic similarity to the question.
type Ranker interface {
	Rank(ctx context.Context, question string, docs []domain.Document) ([]domain.RankedDocument, error)
}

// AnswerGenerator produces the answer text from the question and the
// ranked document list.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, docs []domain.RankedDocument) (string, error)
}
