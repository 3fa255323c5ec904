package db

import (
	"context"
	"time"

	"github.com/gfinder/docchat/internal/domain/query"
)

// Store is the database facade. The handle is long-lived and call-safe;
// it is shared read-only across pipeline runs.
type Store interface {
	Pinger
	KVStore
	IndexManager
	DocSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocSearcher executes structured queries over an FT index.
type DocSearcher interface {
	SearchDocs(ctx context.Context, q *DocQuery) (*SearchResult, error)
}

// DocQuery is one full-text search request.
type DocQuery struct {
	IndexName    string
	Query        query.Clause
	Limit        int
	ReturnFields []string
}

// SearchResult is the raw outcome of one FT.SEARCH call, in the store's
// native relevance order.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one raw hit: the record key and its stored hash fields.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// IndexFieldType enumerates supported index field types.
type IndexFieldType string

const (
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
)

// IndexField describes one schema field of an FT index.
type IndexField struct {
	Name         string
	Type         IndexFieldType
	IndexMissing bool // enables ismissing(@field) queries
}

// IndexDefinition describes an FT index over hash records.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}
