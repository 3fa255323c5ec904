package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/domain/query"
	"github.com/gfinder/docchat/internal/metrics"
)

// DefaultResultCap bounds how many documents one retrieval may return.
const DefaultResultCap = 10000

// Service sequences query building, retrieval, ranking and answer
// generation for one question. No stage is retried automatically; every
// stage error maps to exactly one taxonomy value in the returned Outcome.
type Service struct {
	docs      DocumentSearcher
	ranker    Ranker
	generator AnswerGenerator
	resultCap int
	logger    *zap.Logger
}

// New creates a pipeline coordinator. resultCap <= 0 falls back to
// DefaultResultCap.
func New(
	docs DocumentSearcher,
	ranker Ranker,
	generator AnswerGenerator,
	resultCap int,
	logger *zap.Logger,
) *Service {
	if resultCap <= 0 {
		resultCap = DefaultResultCap
	}
	return &Service{
		docs:      docs,
		ranker:    ranker,
		generator: generator,
		resultCap: resultCap,
		logger:    logger,
	}
}

// run tracks the state of one pipeline execution for logging.
type run struct {
	id     string
	state  State
	logger *zap.Logger
}

func (r *run) to(next State) {
	r.logger.Debug("Pipeline transition",
		zap.String("run_id", r.id),
		zap.String("from", string(r.state)),
		zap.String("to", string(next)),
	)
	r.state = next
}

// Ask executes one full pipeline run against the session's current
// filter state. The user turn is appended before any stage runs and is
// preserved on failure; the answer turn is appended only when the
// session has not been reset since the run began.
//
// On failure the Outcome carries the taxonomy reason and the returned
// error wraps the matching domain sentinel. Partial results are
// discarded, never returned.
func (s *Service) Ask(ctx context.Context, sess *Session, question string) (Outcome, error) {
	runID := sess.BeginRun(question)
	filterState := sess.Filters()

	r := &run{id: runID, state: StateIdle, logger: s.logger}

	r.to(StateQuerying)
	q := query.Build(filterState)

	r.to(StateRetrieving)
	retrieveStart := time.Now()
	docs, err := s.docs.Search(ctx, q, s.resultCap)
	metrics.PipelineStageDuration.WithLabelValues("retrieve").Observe(time.Since(retrieveStart).Seconds())
	if err != nil {
		return s.fail(r, ReasonStoreUnavailable, fmt.Errorf("retrieve documents: %w", err))
	}
	metrics.PipelineDocumentsRetrieved.Observe(float64(len(docs)))

	if len(docs) == 0 {
		r.to(StateNoResults)
		metrics.PipelineRunsTotal.WithLabelValues(string(OutcomeNoResults)).Inc()
		s.logger.Info("Pipeline run matched no documents", zap.String("run_id", runID))
		return Outcome{Kind: OutcomeNoResults}, nil
	}

	r.to(StateRanking)
	rankStart := time.Now()
	ranked, err := s.ranker.Rank(ctx, question, docs)
	metrics.PipelineStageDuration.WithLabelValues("rank").Observe(time.Since(rankStart).Seconds())
	if err != nil {
		return s.fail(r, ReasonRankingFailed, fmt.Errorf("rank documents: %w", err))
	}
	if len(ranked) == 0 {
		return s.fail(r, ReasonRankingFailed,
			fmt.Errorf("%w: empty ranking for %d documents", domain.ErrRankingFailed, len(docs)))
	}

	r.to(StateAwaitingAnswer)
	genStart := time.Now()
	answer, err := s.generator.Generate(ctx, question, ranked)
	metrics.PipelineStageDuration.WithLabelValues("generate").Observe(time.Since(genStart).Seconds())
	if err != nil {
		return s.fail(r, ReasonGenerationFailed, fmt.Errorf("generate answer: %w", err))
	}

	r.to(StateDone)
	metrics.PipelineRunsTotal.WithLabelValues(string(OutcomeAnswered)).Inc()

	if !sess.AppendAnswer(runID, answer) {
		s.logger.Warn("Dropping stale pipeline result, session was reset",
			zap.String("session_id", sess.ID),
			zap.String("run_id", runID),
		)
	}

	return Outcome{
		Kind:    OutcomeAnswered,
		Answer:  answer,
		Sources: ranked,
	}, nil
}

func (s *Service) fail(r *run, reason FailureReason, err error) (Outcome, error) {
	r.to(StateFailed)
	metrics.PipelineRunsTotal.WithLabelValues(string(OutcomeFailed)).Inc()
	metrics.PipelineFailuresTotal.WithLabelValues(string(reason)).Inc()
	s.logger.Error("Pipeline run failed",
		zap.String("run_id", r.id),
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
	return Outcome{Kind: OutcomeFailed, Reason: reason}, err
}
