package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
	"github.com/nickfox/LLMCreativeStudio/internal/logging"
)

// Generator produces text for a participant. Implemented by the conversation
// orchestrator, which owns the agent registry.
type Generator interface {
	GenerateFor(ctx context.Context, participant, prompt string, extendedReasoning bool) (string, error)
}

// PersonaDirectory looks up the persona assigned to a participant, if any.
type PersonaDirectory interface {
	PersonaFor(participant string) (core.Character, bool)
}

// HistorySink receives every debate message for the shared conversation log.
type HistorySink interface {
	Append(msg core.Message)
}

// Manager drives the five-phase debate protocol across an ordered list of
// participants. It is not safe for concurrent use; the owning orchestrator
// serializes access.
type Manager struct {
	gen      Generator
	personas PersonaDirectory
	sink     HistorySink
	log      *logging.Logger

	state           State
	topic           string
	order           []string
	completed       map[string]bool
	questions       map[string]map[string]string
	finalPositions  map[string]string
	consensusScores map[string]map[string]int
	waitingForUser  bool
	userInputs      map[int]string
	history         []core.Message
}

// New creates an idle debate manager.
func New(gen Generator, personas PersonaDirectory, sink HistorySink, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		gen:      gen,
		personas: personas,
		sink:     sink,
		log:      log,
		state:    StateIdle,
	}
}

// State returns the current debate state.
func (m *Manager) State() State { return m.state }

// Topic returns the debate topic.
func (m *Manager) Topic() string { return m.topic }

// Order returns the speaker order.
func (m *Manager) Order() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// IsWaitingForUser reports whether the debate is paused for user input
// between rounds.
func (m *Manager) IsWaitingForUser() bool { return m.waitingForUser }

// Active reports whether a debate is in progress.
func (m *Manager) Active() bool {
	return m.state != StateIdle && m.state != StateComplete
}

// FinalPositions returns a copy of the recorded final positions.
func (m *Manager) FinalPositions() map[string]string {
	out := make(map[string]string, len(m.finalPositions))
	for k, v := range m.finalPositions {
		out[k] = v
	}
	return out
}

// UserInputs returns a copy of user contributions keyed by round index.
func (m *Manager) UserInputs() map[int]string {
	out := make(map[int]string, len(m.userInputs))
	for k, v := range m.userInputs {
		out[k] = v
	}
	return out
}

// Start begins a debate on the given topic with the given speaker order and
// runs the opening round to completion, then pauses for user input. An empty
// order falls back to the default participant set.
func (m *Manager) Start(ctx context.Context, topic string, order []string) ([]core.Message, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, core.ErrValidation(core.CodeEmptyTopic, "debate topic is empty")
	}
	if m.Active() {
		return nil, core.ErrState(core.CodeDebateActive,
			fmt.Sprintf("a debate on %q is already in progress", m.topic))
	}

	if len(order) == 0 {
		for _, p := range core.DefaultParticipants() {
			order = append(order, string(p))
		}
	}

	m.topic = topic
	m.order = order
	m.state = StateOpening
	m.completed = make(map[string]bool)
	m.questions = make(map[string]map[string]string)
	m.finalPositions = make(map[string]string)
	m.consensusScores = make(map[string]map[string]int)
	m.userInputs = make(map[int]string)
	m.history = nil
	m.waitingForUser = false

	m.log.Info("debate started", "topic", topic, "speakers", strings.Join(order, ","))

	banner := core.SystemMessage(fmt.Sprintf(
		"Starting %d-round collaborative debate on: %s\n\n"+
			"Round 1: Opening statements\n"+
			"Round 2: Defense & questions\n"+
			"Round 3: Responses & final positions\n"+
			"Round 4: Weighted consensus\n"+
			"Final: Synthesis of results", roundLimit, topic))
	banner.RoundLabel = m.state.Label()
	m.record(banner)

	msgs, err := m.runUntilPause(ctx)
	return append([]core.Message{banner}, msgs...), err
}

// Advance moves the debate forward by one speaker. When the step completes a
// round it either pauses for user input or, after the consensus round, runs
// the synthesis. Calling Advance while paused skips the pause. Advance on an
// idle or complete debate is a no-op.
func (m *Manager) Advance(ctx context.Context) ([]core.Message, error) {
	switch m.state {
	case StateIdle, StateComplete:
		return nil, nil
	case StateSynthesis:
		return m.runSynthesis(ctx)
	}

	var out []core.Message

	// A full completed set here means the previous call finished the round
	// and paused; transition into the next round now.
	if len(m.completed) == len(m.order) {
		m.completed = make(map[string]bool)
		m.waitingForUser = false
		m.state++

		transition := core.SystemMessage(fmt.Sprintf(
			"Beginning Round %d: %s", m.state.Round(), m.state.Label()))
		transition.Round = m.state.Round()
		transition.RoundLabel = m.state.Label()
		m.record(transition)
		out = append(out, transition)
	}

	response := m.speakNext(ctx)
	out = append(out, response)

	if len(m.completed) == len(m.order) {
		if m.state == StateConsensus {
			// Numbered rounds exhausted; synthesize in the same call.
			m.completed = make(map[string]bool)
			m.state = StateSynthesis
			syn, err := m.runSynthesis(ctx)
			return append(out, syn...), err
		}

		m.waitingForUser = true
		notice := core.SystemMessage(fmt.Sprintf(
			"Round %d complete. Add your own thoughts, or send /continue to proceed.",
			m.state.Round()))
		notice.Round = m.state.Round()
		notice.RoundLabel = m.state.Label()
		m.record(notice)
		out = append(out, notice)
	}

	return out, nil
}

// ProcessUserInput resumes a paused debate. A skip token (/continue) resumes
// without recording anything; any other text is recorded as the user's
// contribution for the just-completed round and appended to the history. The
// debate then cascades through the next round. Calls on an idle, complete,
// or non-paused debate are no-ops.
func (m *Manager) ProcessUserInput(ctx context.Context, text string) ([]core.Message, error) {
	if m.state == StateIdle || m.state == StateComplete || !m.waitingForUser {
		return nil, nil
	}

	var out []core.Message
	trimmed := strings.TrimSpace(text)
	if trimmed != "/continue" && trimmed != "/continue_debate" {
		round := m.state.Round()
		m.userInputs[round] = text

		userMsg := core.Message{
			Sender:     "user",
			Content:    text,
			Timestamp:  time.Now(),
			Round:      round,
			RoundLabel: m.state.Label(),
		}
		m.record(userMsg)
		out = append(out, userMsg)
	}

	m.waitingForUser = false
	msgs, err := m.runUntilPause(ctx)
	return append(out, msgs...), err
}

// runUntilPause advances repeatedly until the debate pauses for user input,
// completes, or fails.
func (m *Manager) runUntilPause(ctx context.Context) ([]core.Message, error) {
	var out []core.Message
	for m.state != StateComplete && !m.waitingForUser {
		msgs, err := m.Advance(ctx)
		out = append(out, msgs...)
		if err != nil {
			return out, err
		}
		if len(msgs) == 0 {
			break
		}
	}
	return out, nil
}

// speakNext generates the next speaker's contribution for the current round
// and applies round-specific extraction.
func (m *Manager) speakNext(ctx context.Context) core.Message {
	var speaker string
	for _, s := range m.order {
		if !m.completed[s] {
			speaker = s
			break
		}
	}

	prompt := m.roundPrompt(speaker)
	rlog := m.log.WithParticipant(speaker).WithRound(m.state.Round())

	content, err := m.gen.GenerateFor(ctx, speaker, prompt, false)
	if err != nil {
		rlog.Warn("generation failed", "error", err)
		content = fmt.Sprintf("Error: no response from %s (%v)", m.displayName(speaker), err)
	}

	switch m.state {
	case StateQuestioning:
		m.questions[speaker] = extractQuestions(content, m.displayNames(m.otherSpeakers(speaker)))
		rlog.Debug("extracted questions", "count", len(m.questions[speaker]))
	case StateResponses:
		m.finalPositions[speaker] = content
	case StateConsensus:
		scores, total := extractConsensusScores(content, m.displayNames(m.order))
		if !scoresInTolerance(total) {
			rlog.Warn("consensus scores out of tolerance, rescaling", "total", total)
			scores = normalizeScores(scores, total)
		}
		m.consensusScores[speaker] = scores
	}

	m.completed[speaker] = true

	msg := core.Message{
		Sender:        speaker,
		Content:       content,
		Timestamp:     time.Now(),
		Participant:   core.ParticipantID(speaker),
		Round:         m.state.Round(),
		RoundLabel:    m.state.Label(),
		SpeakerIndex:  len(m.completed),
		TotalSpeakers: len(m.order),
	}
	if c, ok := m.personaFor(speaker); ok {
		msg.Persona = c.Name
	}
	m.record(msg)
	return msg
}

// runSynthesis generates the final synthesis and completes the debate.
func (m *Manager) runSynthesis(ctx context.Context) ([]core.Message, error) {
	announce := core.SystemMessage("Generating final synthesis based on weighted consensus scores...")
	announce.Round = StateSynthesis.Round()
	announce.RoundLabel = StateSynthesis.Label()
	m.record(announce)

	synthesizer := m.synthesizer()
	content, err := m.gen.GenerateFor(ctx, synthesizer, m.synthesisPrompt(), true)
	if err != nil {
		m.log.WithParticipant(synthesizer).Warn("synthesis generation failed", "error", err)
		content = fmt.Sprintf("Error: no synthesis from %s (%v)", m.displayName(synthesizer), err)
	}

	synthesis := core.Message{
		Sender:      "synthesis",
		Content:     content,
		Timestamp:   time.Now(),
		Participant: core.ParticipantID(synthesizer),
		Round:       StateSynthesis.Round(),
		RoundLabel:  StateSynthesis.Label(),
		IsSynthesis: true,
	}
	m.record(synthesis)

	m.state = StateComplete
	m.log.Info("debate complete", "topic", m.topic)

	return []core.Message{announce, synthesis}, nil
}

// record appends a message to the private debate history and the shared
// conversation log.
func (m *Manager) record(msg core.Message) {
	m.history = append(m.history, msg)
	if m.sink != nil {
		m.sink.Append(msg)
	}
}

// findStatement returns a speaker's contribution from a given round, or the
// empty string.
func (m *Manager) findStatement(speaker string, state State) string {
	for _, msg := range m.history {
		if string(msg.Participant) == speaker && msg.Round == state.Round() && !msg.IsSystem {
			return msg.Content
		}
	}
	return ""
}

func (m *Manager) otherSpeakers(speaker string) []string {
	others := make([]string, 0, len(m.order)-1)
	for _, s := range m.order {
		if s != speaker {
			others = append(others, s)
		}
	}
	return others
}

func (m *Manager) personaFor(speaker string) (core.Character, bool) {
	if m.personas == nil {
		return core.Character{}, false
	}
	return m.personas.PersonaFor(speaker)
}

func (m *Manager) displayName(speaker string) string {
	if c, ok := m.personaFor(speaker); ok {
		return c.Name
	}
	return core.ParticipantID(speaker).DisplayName()
}

func (m *Manager) displayNames(speakers []string) map[string]string {
	names := make(map[string]string, len(speakers))
	for _, s := range speakers {
		names[s] = m.displayName(s)
	}
	return names
}
