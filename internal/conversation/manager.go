package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
	"github.com/nickfox/LLMCreativeStudio/internal/debate"
	"github.com/nickfox/LLMCreativeStudio/internal/logging"
)

// Modes a conversation can be in.
var validModes = []string{"open", "debate", "creative", "research"}

// Config configures a conversation manager.
type Config struct {
	SessionID string
	// DefaultParticipants respond when no roles are assigned and no target
	// is addressed.
	DefaultParticipants []string
	// HistoryWindow is how many recent messages are folded into ordinary
	// generation prompts.
	HistoryWindow int
}

// Manager owns a single conversation: its append-only history, role and
// persona state, command dispatch, and the active debate session if any.
type Manager struct {
	mu sync.Mutex

	sessionID string
	mode      string
	topic     string

	history   []core.Message
	roles     map[string]core.Role
	roleOrder []string

	router     *Router
	characters *Characters
	agents     core.AgentRegistry
	store      core.ChatStore
	log        *logging.Logger

	defaults      []string
	historyWindow int

	debate *debate.Manager
}

// NewManager creates a conversation manager. store may be nil for ephemeral
// sessions.
func NewManager(cfg Config, agents core.AgentRegistry, store core.ChatStore, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if len(cfg.DefaultParticipants) == 0 {
		for _, p := range core.DefaultParticipants() {
			cfg.DefaultParticipants = append(cfg.DefaultParticipants, string(p))
		}
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}

	m := &Manager{
		sessionID:     cfg.SessionID,
		mode:          "open",
		roles:         make(map[string]core.Role),
		router:        NewRouter(),
		characters:    NewCharacters(),
		agents:        agents,
		store:         store,
		log:           log.WithSession(cfg.SessionID),
		defaults:      cfg.DefaultParticipants,
		historyWindow: cfg.HistoryWindow,
	}
	m.persistSession()
	return m
}

// SessionID returns the session identifier.
func (m *Manager) SessionID() string { return m.sessionID }

// Mode returns the current conversation mode.
func (m *Manager) Mode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// History returns a copy of the conversation log.
func (m *Manager) History() []core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Message, len(m.history))
	copy(out, m.history)
	return out
}

// ProcessMessage handles one incoming utterance: commands are dispatched,
// debate input is forwarded when a debate is paused, and ordinary turns fan
// out to the selected recipients.
func (m *Manager) ProcessMessage(ctx context.Context, text, sender string) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sender == "user" && m.router.IsCommand(text) {
		return m.handleCommand(ctx, text)
	}

	if sender == "user" && m.debate != nil && m.debate.IsWaitingForUser() {
		return m.debate.ProcessUserInput(ctx, text)
	}

	target, cleaned := m.router.ParseMentions(text)
	if target == "" {
		if p, stripped := m.characters.ParseAddressing(cleaned); p != "" {
			target, cleaned = string(p), stripped
		}
	}

	m.Append(core.Message{
		Sender:    sender,
		Content:   cleaned,
		Target:    core.ParticipantID(target),
		Timestamp: time.Now(),
	})

	recipients := m.router.Recipients(target, m.roleHolders(), m.defaults)
	return m.fanOut(ctx, recipients, cleaned)
}

// fanOut generates responses from all recipients concurrently. A failing
// participant becomes an inline error message; the others still respond.
// Prompts are built up front so the goroutines share no manager state.
func (m *Manager) fanOut(ctx context.Context, recipients []string, message string) ([]core.Message, error) {
	type turn struct {
		participant string
		agent       core.Agent
		opts        core.GenerateOptions
		persona     string
	}

	turns := make([]turn, 0, len(recipients))
	for _, p := range recipients {
		t := turn{participant: p}
		if c, ok := m.characters.CharacterFor(p); ok {
			t.persona = c.Name
		}

		agent, err := m.agents.Get(p)
		if err != nil {
			m.log.WithParticipant(p).Warn("agent unavailable", "error", err)
		}
		t.agent = agent

		opts := core.DefaultGenerateOptions()
		opts.Prompt = m.buildContext() + "\n" + message
		opts.SystemPrompt = m.systemPromptFor(p)
		opts.Role = m.roleFor(p)
		t.opts = opts

		turns = append(turns, t)
	}

	responses := make([]core.Message, len(turns))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range turns {
		g.Go(func() error {
			msg := core.Message{
				Sender:      t.participant,
				Participant: core.ParticipantID(t.participant),
				Persona:     t.persona,
				Timestamp:   time.Now(),
			}

			if t.agent == nil {
				msg.Content = fmt.Sprintf("Error: no response from %s (agent not configured)",
					core.ParticipantID(t.participant).DisplayName())
			} else if result, err := t.agent.Generate(gctx, t.opts); err != nil {
				m.log.WithParticipant(t.participant).Warn("generation failed", "error", err)
				msg.Content = fmt.Sprintf("Error: no response from %s (%v)",
					core.ParticipantID(t.participant).DisplayName(), err)
			} else {
				msg.Content = result.Output
			}

			responses[i] = msg
			return nil
		})
	}
	_ = g.Wait()

	for _, msg := range responses {
		m.Append(msg)
	}
	return responses, nil
}

func (m *Manager) handleCommand(ctx context.Context, text string) ([]core.Message, error) {
	cmd, args := m.router.ParseCommand(text)

	switch cmd {
	case "/debate":
		return m.cmdDebate(ctx, strings.Join(args, " "))

	case "/continue", "/continue_debate":
		if m.debate == nil || !m.debate.IsWaitingForUser() {
			return m.notice("No debate is waiting for input."), nil
		}
		return m.debate.ProcessUserInput(ctx, "/continue")

	case "/role":
		if len(args) < 2 {
			return m.notice("Usage: /role [participant] [role]"), nil
		}
		return m.cmdRole(args[0], args[1])

	case "/character":
		if len(args) < 2 {
			return m.notice("Usage: /character [participant] [name] [background...]"), nil
		}
		return m.cmdCharacter(args[0], args[1], strings.Join(args[2:], " "))

	case "/clear_characters":
		m.characters.Clear()
		return m.notice("All character assignments cleared."), nil

	case "/mode":
		if len(args) < 1 {
			return m.notice("Usage: /mode [open|debate|creative|research]"), nil
		}
		return m.cmdMode(args[0])

	case "/help":
		return m.notice(helpText), nil

	default:
		return m.notice(fmt.Sprintf("Unknown command: %s\nType /help to see available commands.", cmd)), nil
	}
}

func (m *Manager) cmdDebate(ctx context.Context, topic string) ([]core.Message, error) {
	if m.debate != nil && m.debate.Active() {
		return m.notice("A debate is already in progress. Finish it or send /continue."), nil
	}

	order := m.roleHolders()
	if len(order) == 0 {
		order = m.defaults
	}

	m.debate = debate.New(m, m, appendSink{m}, m.log)
	msgs, err := m.debate.Start(ctx, topic, order)
	if err != nil {
		m.debate = nil
		return m.notice(userFacing(err)), nil
	}

	m.mode = "debate"
	m.topic = topic
	return msgs, nil
}

func (m *Manager) cmdRole(participantArg, roleArg string) ([]core.Message, error) {
	participant, err := core.ParseParticipant(participantArg, m.agents)
	if err != nil {
		return m.notice(m.withSuggestion(userFacing(err), participantArg)), nil
	}
	role, err := core.ParseRole(roleArg)
	if err != nil {
		return m.notice(userFacing(err)), nil
	}

	if _, ok := m.roles[string(participant)]; !ok {
		m.roleOrder = append(m.roleOrder, string(participant))
	}
	m.roles[string(participant)] = role

	return m.notice(fmt.Sprintf("Assigned role '%s' to %s", role, participant.DisplayName())), nil
}

func (m *Manager) cmdCharacter(participantArg, name, background string) ([]core.Message, error) {
	participant, err := core.ParseParticipant(participantArg, m.agents)
	if err != nil {
		return m.notice(m.withSuggestion(userFacing(err), participantArg)), nil
	}

	character := m.characters.Assign(participant, name, background)
	return m.notice(fmt.Sprintf("Assigned character '%s' to %s", character.Name, participant.DisplayName())), nil
}

func (m *Manager) cmdMode(mode string) ([]core.Message, error) {
	mode = strings.ToLower(mode)
	for _, valid := range validModes {
		if mode == valid {
			m.mode = mode
			return m.notice(fmt.Sprintf("Switched to %s mode", mode)), nil
		}
	}
	return m.notice(fmt.Sprintf("Invalid mode: %s. Valid options: %s",
		mode, strings.Join(validModes, ", "))), nil
}

// AssignCharacter assigns a persona outside of command handling, used when
// loading persona presets at startup.
func (m *Manager) AssignCharacter(participant, name, background string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := core.ParseParticipant(participant, m.agents)
	if err != nil {
		return err
	}
	m.characters.Assign(p, name, background)
	return nil
}

// notice records and returns a single system message.
func (m *Manager) notice(content string) []core.Message {
	msg := core.SystemMessage(content)
	m.Append(msg)
	return []core.Message{msg}
}

// withSuggestion appends a fuzzy "did you mean" hint for a mistyped
// participant name.
func (m *Manager) withSuggestion(message, input string) string {
	if m.agents == nil {
		return message
	}
	matches := fuzzy.Find(input, m.agents.List())
	if len(matches) > 0 {
		return fmt.Sprintf("%s (did you mean %q?)", message, matches[0].Str)
	}
	return message
}

// roleHolders returns the participants with assigned roles, in assignment
// order.
func (m *Manager) roleHolders() []string {
	out := make([]string, len(m.roleOrder))
	copy(out, m.roleOrder)
	return out
}

func (m *Manager) roleFor(participant string) core.Role {
	if role, ok := m.roles[participant]; ok {
		return role
	}
	return core.RoleDefault
}

// systemPromptFor combines persona and role instructions for a participant.
func (m *Manager) systemPromptFor(participant string) string {
	var parts []string
	if c, ok := m.characters.CharacterFor(participant); ok {
		p := fmt.Sprintf("You are %s.", c.Name)
		if c.Background != "" {
			p += " " + c.Background
		}
		parts = append(parts, p)
	}
	if role := m.roleFor(participant); role != core.RoleDefault {
		parts = append(parts, fmt.Sprintf("Your assigned role in this conversation is %s.", role))
	}
	return strings.Join(parts, "\n")
}

// buildContext formats the recent conversation for inclusion in an ordinary
// generation prompt.
func (m *Manager) buildContext() string {
	recent := m.history
	if len(recent) > m.historyWindow {
		recent = recent[len(recent)-m.historyWindow:]
	}

	lines := []string{
		"Recent conversation:",
		fmt.Sprintf("Current mode: %s", m.mode),
		fmt.Sprintf("Current topic: %s", m.topic),
		"",
	}
	for _, msg := range recent {
		if msg.Target != "" {
			lines = append(lines, fmt.Sprintf("%s (to %s): %s", msg.DisplayName(), msg.Target, msg.Content))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", msg.DisplayName(), msg.Content))
		}
	}
	return strings.Join(lines, "\n")
}

// DebateStatus is a snapshot of the active debate for status queries.
type DebateStatus struct {
	Active         bool           `json:"active"`
	State          string         `json:"state"`
	Topic          string         `json:"topic,omitempty"`
	Round          int            `json:"round,omitempty"`
	WaitingForUser bool           `json:"waiting_for_user"`
	Speakers       []string       `json:"speakers,omitempty"`
	AverageScores  map[string]int `json:"average_scores,omitempty"`
}

// StartDebate begins a debate on the given topic using the current role
// holders as the speaker order.
func (m *Manager) StartDebate(ctx context.Context, topic string) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmdDebate(ctx, topic)
}

// AdvanceDebate moves the active debate forward by one speaker.
func (m *Manager) AdvanceDebate(ctx context.Context) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debate == nil {
		return nil, core.ErrState(core.CodeInvalidState, "no debate in progress")
	}
	return m.debate.Advance(ctx)
}

// DebateInput forwards user input to a paused debate.
func (m *Manager) DebateInput(ctx context.Context, text string) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debate == nil {
		return nil, core.ErrState(core.CodeInvalidState, "no debate in progress")
	}
	return m.debate.ProcessUserInput(ctx, text)
}

// Debate returns a snapshot of the active debate.
func (m *Manager) Debate() DebateStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debate == nil {
		return DebateStatus{State: "idle"}
	}
	return DebateStatus{
		Active:         m.debate.Active(),
		State:          m.debate.State().String(),
		Topic:          m.debate.Topic(),
		Round:          m.debate.State().Round(),
		WaitingForUser: m.debate.IsWaitingForUser(),
		Speakers:       m.debate.Order(),
		AverageScores:  m.debate.AverageScores(),
	}
}

// GenerateFor implements debate.Generator. The debate manager calls it
// while the conversation lock is held, so it must not take the lock.
func (m *Manager) GenerateFor(ctx context.Context, participant, prompt string, extendedReasoning bool) (string, error) {
	agent, err := m.agents.Get(participant)
	if err != nil {
		return "", err
	}

	opts := core.DefaultGenerateOptions()
	opts.Prompt = prompt
	opts.SystemPrompt = m.systemPromptFor(participant)
	opts.Role = m.roleFor(participant)
	opts.ExtendedReasoning = extendedReasoning

	result, err := agent.Generate(ctx, opts)
	if err != nil {
		return "", err
	}
	return result.Output, nil
}

// PersonaFor implements debate.PersonaDirectory.
func (m *Manager) PersonaFor(participant string) (core.Character, bool) {
	return m.characters.CharacterFor(participant)
}

// appendSink adapts the manager to debate.HistorySink.
type appendSink struct{ m *Manager }

func (s appendSink) Append(msg core.Message) { s.m.Append(msg) }

// Append records a message in the conversation log and persists it
// best-effort. Callers must hold the manager lock or be called from within
// it.
func (m *Manager) Append(msg core.Message) {
	m.history = append(m.history, msg)
	m.persistMessage(msg)
}

func (m *Manager) persistSession() {
	if m.store == nil {
		return
	}
	now := time.Now()
	err := m.store.SaveSession(context.Background(), &core.ChatSessionState{
		ID:        m.sessionID,
		Mode:      m.mode,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		m.log.Warn("saving session failed", "error", err)
	}
}

func (m *Manager) persistMessage(msg core.Message) {
	if m.store == nil {
		return
	}
	err := m.store.SaveMessage(context.Background(), &core.ChatMessageState{
		ID:          uuid.NewString(),
		SessionID:   m.sessionID,
		Sender:      msg.Sender,
		Participant: string(msg.Participant),
		Persona:     msg.Persona,
		Content:     msg.Content,
		Timestamp:   msg.Timestamp,
		Round:       msg.Round,
		RoundLabel:  msg.RoundLabel,
		IsSystem:    msg.IsSystem,
		IsSynthesis: msg.IsSynthesis,
	})
	if err != nil {
		m.log.Warn("saving message failed", "error", err)
	}
}

// userFacing strips the structured error prefix for display in chat.
func userFacing(err error) string {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return domErr.Message
	}
	return err.Error()
}

const helpText = `## LLMCreativeStudio Commands

### Directing Messages
- ` + "`@a` or `@claude`" + ` - Direct message to Claude only
- ` + "`@chatgpt`" + ` - Direct message to ChatGPT only
- ` + "`@g` or `@gemini`" + ` - Direct message to Gemini only
- ` + "`@o` or `@ollama`" + ` - Direct message to Ollama only
- No @ mention - Message goes to all participants
- Start a message with a character's name to address that character

### Special Commands
- ` + "`/debate [topic]`" + ` - Start a structured 4-round debate on a topic
- ` + "`/continue`" + ` - Resume a paused debate without adding input
- ` + "`/role [participant] [role]`" + ` - Assign a role (default, debater, creative, researcher)
- ` + "`/character [participant] [name] [background...]`" + ` - Assign a persona
- ` + "`/clear_characters`" + ` - Remove all persona assignments
- ` + "`/mode [open|debate|creative|research]`" + ` - Switch conversation mode
- ` + "`/help`" + ` - Show this help message`
