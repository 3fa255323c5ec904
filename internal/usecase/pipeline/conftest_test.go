package pipeline

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/domain/query"
	"github.com/gfinder/docchat/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

type mockSearcher struct {
	docs      []domain.Document
	err       error
	calls     int
	lastQuery query.Clause
	lastLimit int
}

func (m *mockSearcher) Search(_ context.Context, q query.Clause, limit int) ([]domain.Document, error) {
	m.calls++
	m.lastQuery = q
	m.lastLimit = limit
	return m.docs, m.err
}

type mockRanker struct {
	ranked []domain.RankedDocument
	err    error
	calls  int
}

func (m *mockRanker) Rank(_ context.Context, _ string, _ []domain.Document) ([]domain.RankedDocument, error) {
	m.calls++
	return m.ranked, m.err
}

type mockGenerator struct {
	answer string
	err    error
	calls  int
	hook   func() // runs before returning, simulates concurrent session resets
}

func (m *mockGenerator) Generate(_ context.Context, _ string, _ []domain.RankedDocument) (string, error) {
	m.calls++
	if m.hook != nil {
		m.hook()
	}
	return m.answer, m.err
}

func newTestService(t *testing.T, searcher *mockSearcher, ranker *mockRanker, gen *mockGenerator) *Service {
	t.Helper()
	return New(searcher, ranker, gen, 0, zap.NewNop())
}
