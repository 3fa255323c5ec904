// Package documents is the document store client: it executes structured
// queries against the full-text index and maps raw hits to domain documents.
package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/gfinder/docchat/internal/db"
	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/domain/query"
)

// store is the consumer interface for document retrieval (ISP).
type store interface {
	SearchDocs(ctx context.Context, q *db.DocQuery) (*db.SearchResult, error)
}

// Repo retrieves documents from the full-text index. Read-only: no call
// mutates the index.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	timeout   time.Duration
}

// New creates a document repository over the given index.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// WithTimeout bounds every search call. Zero means no bound.
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	r.timeout = d
	return r
}

// Search executes the structured query, requesting up to limit results in
// the store's native relevance order. An empty result set is returned as
// nil, nil rather than an error. Store connectivity failures surface as
// domain.ErrStoreUnavailable and are not retried here.
func (r *Repo) Search(ctx context.Context, q query.Clause, limit int) ([]domain.Document, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	dq := &db.DocQuery{
		IndexName: r.indexName,
		Query:     q,
		Limit:     limit,
		ReturnFields: []string{
			query.FieldTitle,
			"url",
			query.FieldBodyText,
			"summary",
			query.FieldFiscalYearStart,
			query.FieldFiscalYearEnd,
			query.FieldCategory,
			query.FieldRegionCode,
		},
	}

	sr, err := r.store.SearchDocs(ctx, dq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return parseDocuments(sr, r.keyPrefix), nil
}
