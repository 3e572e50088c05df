package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nickfox/LLMCreativeStudio/internal/conversation"
	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// SessionResponse is the API representation of a session.
type SessionResponse struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

// MessagesResponse wraps the messages produced by one operation.
type MessagesResponse struct {
	Messages []core.Message `json:"messages"`
}

type createSessionRequest struct {
	ID string `json:"id,omitempty"`
}

type postMessageRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

type startDebateRequest struct {
	Topic string `json:"topic"`
}

type debateInputRequest struct {
	Text string `json:"text"`
}

const msgSessionNotFound = "session not found"

// session resolves the session from the URL, writing a 404 when it is not
// live in the hub.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*conversation.Manager, bool) {
	id := chi.URLParam(r, "sessionID")
	m, ok := s.hub.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, msgSessionNotFound)
		return nil, false
	}
	return m, true
}

// handleCreateSession starts a new conversation session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	m := s.hub.Create(req.ID)
	s.respondJSON(w, http.StatusCreated, SessionResponse{ID: m.SessionID(), Mode: m.Mode()})
}

// handleListSessions lists sessions. With a store configured, persisted
// sessions are included; otherwise only live ones.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		states, err := s.store.ListSessions(r.Context())
		if err != nil {
			s.log.Error("failed to list sessions", "error", err)
			s.respondError(w, http.StatusInternalServerError, "failed to list sessions")
			return
		}
		out := make([]SessionResponse, 0, len(states))
		for _, st := range states {
			out = append(out, SessionResponse{ID: st.ID, Mode: st.Mode})
		}
		s.respondJSON(w, http.StatusOK, out)
		return
	}

	ids := s.hub.List()
	out := make([]SessionResponse, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.hub.Get(id); ok {
			out = append(out, SessionResponse{ID: id, Mode: m.Mode()})
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleGetSession returns a session with its conversation log.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	s.respondJSON(w, http.StatusOK, struct {
		SessionResponse
		Messages []core.Message `json:"messages"`
	}{
		SessionResponse: SessionResponse{ID: m.SessionID(), Mode: m.Mode()},
		Messages:        m.History(),
	})
}

// handleDeleteSession removes a session from the hub and, when a store is
// configured, from persistence.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	deleted := s.hub.Delete(id)

	if s.store != nil {
		if err := s.store.DeleteSession(r.Context(), id); err != nil {
			s.log.Warn("failed to delete persisted session", "session_id", id, "error", err)
		} else {
			deleted = true
		}
	}

	if !deleted {
		s.respondError(w, http.StatusNotFound, msgSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePostMessage processes one user utterance through the session.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Sender == "" {
		req.Sender = "user"
	}

	msgs, err := m.ProcessMessage(r.Context(), req.Text, req.Sender)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
}

// handleStartDebate begins a debate in the session.
func (s *Server) handleStartDebate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	var req startDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msgs, err := m.StartDebate(r.Context(), req.Topic)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
}

// handleAdvanceDebate moves the session's debate forward by one speaker.
func (s *Server) handleAdvanceDebate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	msgs, err := m.AdvanceDebate(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
}

// handleDebateInput forwards user input to a paused debate.
func (s *Server) handleDebateInput(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	var req debateInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msgs, err := m.DebateInput(r.Context(), req.Text)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
}

// handleDebateStatus returns a snapshot of the session's debate.
func (s *Server) handleDebateStatus(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, m.Debate())
}
