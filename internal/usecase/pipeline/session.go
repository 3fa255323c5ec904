package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gfinder/docchat/internal/domain/filters"
)

// Turn roles in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the caller-owned mutable conversation state: history turns,
// the current filter state, and a run identifier. The coordinator never
// holds a session across calls.
//
// Changing filters clears history and bumps the run id, so an in-flight
// run for the prior filter state can no longer append its answer.
type Session struct {
	ID string

	mu      sync.Mutex
	filters filters.State
	history []Turn
	runID   string
}

// NewSession creates an empty session with fresh identifiers.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		runID: uuid.NewString(),
	}
}

// Filters returns the current filter state.
func (s *Session) Filters() filters.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the filter state, clears the history and
// invalidates any in-flight run.
func (s *Session) SetFilters(f filters.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.history = nil
	s.runID = uuid.NewString()
}

// History returns a copy of the conversation turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// BeginRun appends the user turn and returns the run id the caller must
// present to AppendAnswer. The user turn stays in history even when the
// run later fails.
func (s *Session) BeginRun(question string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Role: RoleUser, Content: question})
	return s.runID
}

// AppendAnswer appends the assistant turn if runID is still current.
// Returns false when the session was reset after the run started; the
// stale answer is dropped.
func (s *Session) AppendAnswer(runID, answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return false
	}
	s.history = append(s.history, Turn{Role: RoleAssistant, Content: answer})
	return true
}
