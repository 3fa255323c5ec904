package documents

import (
	"context"
	"testing"

	"github.com/gfinder/docchat/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchDocsFn func(ctx context.Context, q *db.DocQuery) (*db.SearchResult, error)
	lastQuery    *db.DocQuery
}

func (m *mockStore) SearchDocs(ctx context.Context, q *db.DocQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchDocsFn != nil {
		return m.searchDocsFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "docchat:docs:idx", "docchat:docs:")
	return repo, ms
}

func fixtureEntry(key, title, body string) db.SearchEntry {
	return db.SearchEntry{
		Key: key,
		Fields: map[string]string{
			"title":     title,
			"url":       "https://example.org/" + title,
			"body_text": body,
			"summary":   "概要: " + title,
		},
	}
}
