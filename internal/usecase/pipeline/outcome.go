package pipeline

import "github.com/gfinder/docchat/internal/domain"

// State is a phase of one pipeline run.
type State string

// Run states. NoResults and Failed are terminal outcomes, Done is the
// terminal success state.
const (
	StateIdle           State = "idle"
	StateQuerying       State = "querying"
	StateRetrieving     State = "retrieving"
	StateRanking        State = "ranking"
	StateAwaitingAnswer State = "awaiting_answer"
	StateDone           State = "done"
	StateNoResults      State = "no_results"
	StateFailed         State = "failed"
)

// OutcomeKind classifies how a run terminated.
type OutcomeKind string

const (
	OutcomeAnswered  OutcomeKind = "answered"
	OutcomeNoResults OutcomeKind = "no_results"
	OutcomeFailed    OutcomeKind = "failed"
)

// FailureReason is the taxonomy value a failed stage maps to.
// Every stage error maps to exactly one reason.
type FailureReason string

const (
	ReasonStoreUnavailable FailureReason = "store_unavailable"
	ReasonRankingFailed    FailureReason = "ranking_failed"
	ReasonGenerationFailed FailureReason = "generation_failed"
)

// Outcome is the terminal result of one pipeline run.
type Outcome struct {
	Kind   OutcomeKind
	Reason FailureReason // set only when Kind == OutcomeFailed

	Answer  string
	Sources []domain.RankedDocument
}
