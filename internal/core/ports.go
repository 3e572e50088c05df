package core

import (
	"context"
	"time"
)

// Agent defines the contract for text-generation backend adapters.
type Agent interface {
	// Name returns the adapter identifier (e.g. "claude", "gemini").
	Name() string

	// Ping checks if the backend is reachable and authenticated.
	Ping(ctx context.Context) error

	// Generate runs a prompt through the backend and returns the result.
	Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures a generation call.
type GenerateOptions struct {
	Prompt       string
	SystemPrompt string
	Role         Role
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration

	// ExtendedReasoning requests the backend's deeper reasoning mode where
	// supported (used for debate synthesis).
	ExtendedReasoning bool
}

// DefaultGenerateOptions returns sensible defaults.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.7,
		Timeout:     5 * time.Minute,
	}
}

// GenerateResult contains the output of a generation call.
type GenerateResult struct {
	Output    string
	Model     string
	TokensIn  int
	TokensOut int
	Duration  time.Duration
}

// AgentRegistry manages registered generation agents.
type AgentRegistry interface {
	// Get retrieves an agent by participant identifier.
	Get(name string) (Agent, error)

	// Has checks whether an identifier names a registered agent.
	Has(name string) bool

	// List returns all registered agent names.
	List() []string

	// Available returns agents that pass Ping.
	Available(ctx context.Context) []string
}

// ChatStore defines the contract for chat session persistence.
// Implementations can use JSON files or SQLite for storage.
type ChatStore interface {
	// SaveSession persists a chat session.
	SaveSession(ctx context.Context, session *ChatSessionState) error

	// LoadSession retrieves a chat session by ID.
	// Returns nil and no error if session doesn't exist.
	LoadSession(ctx context.Context, id string) (*ChatSessionState, error)

	// ListSessions returns all chat sessions (without messages for efficiency).
	ListSessions(ctx context.Context) ([]*ChatSessionState, error)

	// DeleteSession removes a chat session and all its messages.
	DeleteSession(ctx context.Context, id string) error

	// SaveMessage adds a message to a session.
	SaveMessage(ctx context.Context, msg *ChatMessageState) error

	// LoadMessages retrieves all messages for a session.
	LoadMessages(ctx context.Context, sessionID string) ([]*ChatMessageState, error)

	// Close releases any underlying resources.
	Close() error
}

// ChatSessionState represents the persisted state of a chat session.
type ChatSessionState struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessageState represents a persisted chat message.
type ChatMessageState struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Sender      string    `json:"sender"`
	Participant string    `json:"participant,omitempty"`
	Persona     string    `json:"persona,omitempty"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Round       int       `json:"round,omitempty"`
	RoundLabel  string    `json:"round_label,omitempty"`
	IsSystem    bool      `json:"is_system,omitempty"`
	IsSynthesis bool      `json:"is_synthesis,omitempty"`
}
