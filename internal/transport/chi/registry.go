package chi

import (
	"sync"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/usecase/pipeline"
)

// Registry holds the live conversation sessions. Sessions are in-memory
// only and disappear on process restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*pipeline.Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*pipeline.Session)}
}

// Create registers a fresh session and returns it.
func (r *Registry) Create() *pipeline.Session {
	sess := pipeline.NewSession()
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns the session or domain.ErrSessionNotFound.
func (r *Registry) Get(id string) (*pipeline.Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Removing an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
