package rank

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
)

// DefaultTopK caps how many ranked documents survive re-ranking.
const DefaultTopK = 100

// Service re-ranks retrieved documents by semantic similarity between the
// question and each document body.
type Service struct {
	embed  BatchEmbedder
	topK   int
	logger *zap.Logger
}

// New creates a ranking service. topK <= 0 falls back to DefaultTopK.
func New(embed BatchEmbedder, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{embed: embed, topK: topK, logger: logger}
}

// Rank orders docs by descending cosine similarity to the question and
// truncates to the configured top-K. The question and all distinct document
// bodies go to the provider in one batch call; duplicate bodies are embedded
// once. An empty doc list returns nil without touching the provider.
// Ordering is stable: ties keep retrieval order.
func (s *Service) Rank(ctx context.Context, question string, docs []domain.Document) ([]domain.RankedDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	distinct := make([]string, 0, len(docs))
	bodyIndex := make(map[string]int, len(docs))
	for _, d := range docs {
		if _, ok := bodyIndex[d.BodyText]; !ok {
			bodyIndex[d.BodyText] = len(distinct)
			distinct = append(distinct, d.BodyText)
		}
	}

	texts := make([]string, 0, len(distinct)+1)
	texts = append(texts, question)
	texts = append(texts, distinct...)

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed question and %d bodies: %w", len(distinct), err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrRankingFailed, len(res.Embeddings), len(texts))
	}

	questionVec := res.Embeddings[0]
	bodyVecs := res.Embeddings[1:]

	ranked := make([]domain.RankedDocument, len(docs))
	for i, d := range docs {
		score, err := domain.Cosine(questionVec, bodyVecs[bodyIndex[d.BodyText]])
		if err != nil {
			return nil, fmt.Errorf("%w: score document %s: %w", domain.ErrRankingFailed, d.ID, err)
		}
		ranked[i] = domain.RankedDocument{Document: d, Score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > s.topK {
		ranked = ranked[:s.topK]
	}

	s.logger.Debug("Ranked documents",
		zap.Int("input", len(docs)),
		zap.Int("distinct_bodies", len(distinct)),
		zap.Int("output", len(ranked)),
		zap.Int("tokens", res.TotalTokens),
	)

	return ranked, nil
}
