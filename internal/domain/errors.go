package domain

import "errors"

var (
	// ErrStoreUnavailable signals a document store connection or timeout failure.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrEmbeddingUnavailable signals an embedding backend failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrRankingFailed signals that ranking could not complete despite non-empty input.
	ErrRankingFailed = errors.New("ranking failed")
	// ErrGenerationFailed signals an answer generator failure or malformed output.
	ErrGenerationFailed = errors.New("answer generation failed")
	// ErrVectorDimMismatch signals comparison of vectors with different dimensions.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrSessionNotFound signals a missing conversation session.
	ErrSessionNotFound = errors.New("session not found")
)
