package server

import (
	"sync"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/engine"
)

// holder guards the current session. Readers see either the previous or
// the next session, never a partial one.
type holder struct {
	session *engine.Session
	mu      sync.RWMutex
}

func (h *holder) get() (*engine.Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return nil, common.ErrNoSession
	}
	return h.session, nil
}

func (h *holder) set(s *engine.Session) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
}
