package conversation

import (
	"sync"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
	"github.com/nickfox/LLMCreativeStudio/internal/logging"
)

// Hub tracks the live conversation managers, one per session. The HTTP API
// and the interactive CLI both resolve sessions through it.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Manager

	defaults Config
	agents   core.AgentRegistry
	store    core.ChatStore
	log      *logging.Logger
}

// NewHub creates a hub. defaults.SessionID is ignored; each session gets its
// own identifier.
func NewHub(defaults Config, agents core.AgentRegistry, store core.ChatStore, log *logging.Logger) *Hub {
	if log == nil {
		log = logging.NewNop()
	}
	return &Hub{
		sessions: make(map[string]*Manager),
		defaults: defaults,
		agents:   agents,
		store:    store,
		log:      log,
	}
}

// Create starts a new session. An empty id gets a generated one. Creating an
// id that already exists returns the existing manager.
func (h *Hub) Create(id string) *Manager {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id != "" {
		if m, ok := h.sessions[id]; ok {
			return m
		}
	}

	cfg := h.defaults
	cfg.SessionID = id
	m := NewManager(cfg, h.agents, h.store, h.log)
	h.sessions[m.SessionID()] = m
	return m
}

// Get returns the manager for a session.
func (h *Hub) Get(id string) (*Manager, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.sessions[id]
	return m, ok
}

// Delete removes a session from the hub.
func (h *Hub) Delete(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[id]; !ok {
		return false
	}
	delete(h.sessions, id)
	return true
}

// List returns the identifiers of all live sessions.
func (h *Hub) List() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		out = append(out, id)
	}
	return out
}
