// Package chat provides chat session persistence implementations.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// JSONChatStore implements ChatStore using one JSON file per session.
type JSONChatStore struct {
	mu          sync.RWMutex
	baseDir     string
	sessionsDir string
}

// NewJSONChatStore creates a new JSON-based chat store rooted at path
// (e.g. ".llmstudio/chat").
func NewJSONChatStore(path string) (*JSONChatStore, error) {
	store := &JSONChatStore{
		baseDir:     path,
		sessionsDir: filepath.Join(path, "sessions"),
	}

	if err := os.MkdirAll(store.sessionsDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating chat sessions directory: %w", err)
	}

	return store, nil
}

// chatFileEnvelope wraps session data with messages for file storage.
type chatFileEnvelope struct {
	Version  int                      `json:"version"`
	Session  *core.ChatSessionState   `json:"session"`
	Messages []*core.ChatMessageState `json:"messages"`
}

func (s *JSONChatStore) sessionPath(id string) string {
	return filepath.Join(s.sessionsDir, id+".json")
}

// SaveSession persists a chat session, preserving existing messages.
func (s *JSONChatStore) SaveSession(ctx context.Context, session *core.ChatSessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionPath := s.sessionPath(session.ID)

	var messages []*core.ChatMessageState
	if data, err := os.ReadFile(sessionPath); err == nil {
		var envelope chatFileEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil {
			messages = envelope.Messages
		}
	}

	envelope := chatFileEnvelope{
		Version:  1,
		Session:  session,
		Messages: messages,
	}

	return s.writeEnvelope(sessionPath, &envelope)
}

// LoadSession retrieves a chat session by ID.
func (s *JSONChatStore) LoadSession(ctx context.Context, id string) (*core.ChatSessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var envelope chatFileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}

	return envelope.Session, nil
}

// ListSessions returns all chat sessions.
func (s *JSONChatStore) ListSessions(ctx context.Context) ([]*core.ChatSessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*core.ChatSessionState{}, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	var sessions []*core.ChatSessionState
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.sessionsDir, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}

		var envelope chatFileEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			continue // Skip malformed files
		}

		sessions = append(sessions, envelope.Session)
	}

	return sessions, nil
}

// DeleteSession removes a chat session and all its messages.
func (s *JSONChatStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}

	return nil
}

// SaveMessage adds a message to a session.
func (s *JSONChatStore) SaveMessage(ctx context.Context, msg *core.ChatMessageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionPath := s.sessionPath(msg.SessionID)

	var envelope chatFileEnvelope
	if data, err := os.ReadFile(sessionPath); err == nil {
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("parsing session file: %w", err)
		}
	} else if os.IsNotExist(err) {
		return core.ErrNotFound("session", msg.SessionID)
	} else {
		return fmt.Errorf("reading session file: %w", err)
	}

	envelope.Messages = append(envelope.Messages, msg)

	if envelope.Session != nil {
		envelope.Session.UpdatedAt = msg.Timestamp
	}

	return s.writeEnvelope(sessionPath, &envelope)
}

// LoadMessages retrieves all messages for a session.
func (s *JSONChatStore) LoadMessages(ctx context.Context, sessionID string) ([]*core.ChatMessageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.sessionPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var envelope chatFileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}

	return envelope.Messages, nil
}

// writeEnvelope writes the envelope to disk atomically.
func (s *JSONChatStore) writeEnvelope(path string, envelope *chatFileEnvelope) error {
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

// Close is a no-op for the JSON store.
func (s *JSONChatStore) Close() error {
	return nil
}

var _ core.ChatStore = (*JSONChatStore)(nil)
