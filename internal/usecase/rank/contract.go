package rank

import (
	"context"

	"github.com/gfinder/docchat/internal/domain"
)

// BatchEmbedder vectorizes multiple texts in a single provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
