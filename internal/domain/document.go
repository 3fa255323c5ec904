package domain

// Document is a read-only snapshot of one indexed record. Fetched per query,
// never mutated, discarded when the pipeline run completes.
type Document struct {
	ID              string
	Title           string
	URL             string
	BodyText        string
	Summary         string
	FiscalYearStart int
	FiscalYearEnd   int
	HasFiscalStart  bool
	HasFiscalEnd    bool // false means an open-ended fiscal record
	Category        int
	RegionCode      string
}

// RankedDocument pairs a Document with its semantic similarity to the question.
// Produced fresh by the ranker per pipeline run.
type RankedDocument struct {
	Document
	Score float64
}
