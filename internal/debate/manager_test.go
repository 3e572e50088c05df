package debate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

type generatorFunc func(ctx context.Context, participant, prompt string, extendedReasoning bool) (string, error)

func (f generatorFunc) GenerateFor(ctx context.Context, participant, prompt string, extendedReasoning bool) (string, error) {
	return f(ctx, participant, prompt, extendedReasoning)
}

type personaMap map[string]core.Character

func (p personaMap) PersonaFor(participant string) (core.Character, bool) {
	c, ok := p[participant]
	return c, ok
}

type logSink struct {
	messages []core.Message
}

func (s *logSink) Append(msg core.Message) {
	s.messages = append(s.messages, msg)
}

// debateGenerator answers each round in a machine-parseable way so
// extraction succeeds for every pair.
func debateGenerator(order []string) Generator {
	display := func(p string) string {
		return core.ParticipantID(p).DisplayName()
	}
	return generatorFunc(func(_ context.Context, participant, prompt string, _ bool) (string, error) {
		switch {
		case strings.Contains(prompt, "ROUND 2"):
			var b strings.Builder
			b.WriteString("I stand by my position.\n\n")
			for _, other := range order {
				if other != participant {
					fmt.Fprintf(&b, "TO %s: What is the weakest part of your argument?\n\n", display(other))
				}
			}
			return b.String(), nil
		case strings.Contains(prompt, "ROUND 4"):
			var b strings.Builder
			share := 100 / len(order)
			remainder := 100 - share*len(order)
			for i, s := range order {
				pct := share
				if i == 0 {
					pct += remainder
				}
				fmt.Fprintf(&b, "%s's position: %d%%\n", display(s), pct)
			}
			return b.String(), nil
		case strings.Contains(prompt, "FINAL SYNTHESIS"):
			return "An integrated view of the debate.", nil
		default:
			return fmt.Sprintf("%s's considered position on the topic.", display(participant)), nil
		}
	})
}

func countResponses(msgs []core.Message) int {
	n := 0
	for _, m := range msgs {
		if !m.IsSystem && m.Sender != "user" {
			n++
		}
	}
	return n
}

func TestStart_RunsOpeningRoundThenPauses(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	m := New(debateGenerator(order), nil, nil, nil)

	msgs, err := m.Start(context.Background(), "Is P equal to NP?", order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !msgs[0].IsSystem || !strings.Contains(msgs[0].Content, "Is P equal to NP?") {
		t.Fatalf("expected session banner first, got %#v", msgs[0])
	}
	if got := countResponses(msgs); got != 2 {
		t.Errorf("opening responses = %d, want 2", got)
	}
	if !m.IsWaitingForUser() {
		t.Error("expected pause after opening round")
	}
	if m.State() != StateOpening {
		t.Errorf("state = %v, want %v until the pause clears", m.State(), StateOpening)
	}
}

func TestStart_Validation(t *testing.T) {
	m := New(debateGenerator([]string{"claude"}), nil, nil, nil)

	if _, err := m.Start(context.Background(), "   ", nil); !core.IsCategory(err, core.ErrCatValidation) {
		t.Errorf("empty topic error = %v", err)
	}

	if _, err := m.Start(context.Background(), "topic", []string{"claude", "chatgpt"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := m.Start(context.Background(), "another", nil); !core.IsCategory(err, core.ErrCatState) {
		t.Errorf("second Start error = %v", err)
	}
}

func TestAdvance_RoundCompletionGate(t *testing.T) {
	order := []string{"claude", "chatgpt", "gemini"}
	m := New(debateGenerator(order), nil, nil, nil)
	ctx := context.Background()

	if _, err := m.Start(ctx, "gate test", order); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Step through round 2 one speaker at a time, checking the gate.
	seen := make(map[string]int)
	for i := 0; i < 3; i++ {
		msgs, err := m.Advance(ctx)
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if got := countResponses(msgs); got != 1 {
			t.Fatalf("Advance %d produced %d responses, want 1", i, got)
		}
		for _, msg := range msgs {
			if !msg.IsSystem {
				seen[msg.Sender]++
			}
		}
		if i < 2 && m.State() != StateQuestioning {
			t.Fatalf("state advanced early to %v after speaker %d", m.State(), i+1)
		}
	}

	for _, s := range order {
		if seen[s] != 1 {
			t.Errorf("speaker %s spoke %d times in round 2", s, seen[s])
		}
	}

	// A further call must not re-poll a round-2 speaker; it moves into
	// round 3.
	msgs, err := m.Advance(ctx)
	if err != nil {
		t.Fatalf("Advance into round 3: %v", err)
	}
	for _, msg := range msgs {
		if !msg.IsSystem && msg.Round != StateResponses.Round() {
			t.Errorf("unexpected round %d message: %#v", msg.Round, msg)
		}
	}
}

func TestAdvance_NoOpWhenIdleOrComplete(t *testing.T) {
	m := New(debateGenerator([]string{"claude"}), nil, nil, nil)
	ctx := context.Background()

	if msgs, err := m.Advance(ctx); err != nil || len(msgs) != 0 {
		t.Errorf("Advance on idle = %v, %v", msgs, err)
	}
	if msgs, err := m.ProcessUserInput(ctx, "hello"); err != nil || len(msgs) != 0 {
		t.Errorf("ProcessUserInput on idle = %v, %v", msgs, err)
	}

	m.state = StateComplete
	if msgs, err := m.Advance(ctx); err != nil || len(msgs) != 0 {
		t.Errorf("Advance on complete = %v, %v", msgs, err)
	}
}

func TestProcessUserInput_SkipAndRecord(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	m := New(debateGenerator(order), nil, nil, nil)
	ctx := context.Background()

	if _, err := m.Start(ctx, "pause test", order); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.IsWaitingForUser() {
		t.Fatal("expected pause after round 1")
	}

	// Skip token resumes without recording.
	msgs, err := m.ProcessUserInput(ctx, "/continue")
	if err != nil {
		t.Fatalf("ProcessUserInput: %v", err)
	}
	if _, ok := m.UserInputs()[1]; ok {
		t.Error("/continue must not record an input for round 1")
	}
	if got := countResponses(msgs); got != 2 {
		t.Errorf("round 2 responses = %d, want 2", got)
	}
	if !m.IsWaitingForUser() {
		t.Error("expected pause after round 2")
	}

	// Real input is recorded under the just-completed round.
	msgs, err = m.ProcessUserInput(ctx, "my stance")
	if err != nil {
		t.Fatalf("ProcessUserInput: %v", err)
	}
	if got := m.UserInputs()[2]; got != "my stance" {
		t.Errorf("userInputs[2] = %q, want %q", got, "my stance")
	}
	if len(msgs) == 0 || msgs[0].Sender != "user" || msgs[0].Round != 2 {
		t.Errorf("expected leading user message for round 2, got %#v", msgs)
	}
}

func TestDebate_EndToEnd(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	sink := &logSink{}
	m := New(debateGenerator(order), nil, sink, nil)
	ctx := context.Background()

	if _, err := m.Start(ctx, "end to end", order); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; m.State() != StateComplete; i++ {
		if i > 50 {
			t.Fatal("debate did not terminate")
		}
		if _, err := m.Advance(ctx); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}

	positions := m.FinalPositions()
	for _, s := range order {
		if positions[s] == "" {
			t.Errorf("missing final position for %s", s)
		}
	}

	syntheses := 0
	for _, msg := range sink.messages {
		if msg.IsSynthesis {
			syntheses++
		}
	}
	if syntheses != 1 {
		t.Errorf("synthesis messages = %d, want exactly 1", syntheses)
	}
}

func TestSynthesizer_PrefersClaude(t *testing.T) {
	m := New(nil, nil, nil, nil)
	m.order = []string{"gemini", "claude", "chatgpt"}
	if got := m.synthesizer(); got != "claude" {
		t.Errorf("synthesizer = %q, want claude", got)
	}

	m.order = []string{"gemini", "chatgpt"}
	if got := m.synthesizer(); got != "gemini" {
		t.Errorf("synthesizer = %q, want first in order", got)
	}
}

func TestSynthesis_UsesExtendedReasoning(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	var synthesisExtended bool
	base := debateGenerator(order)
	gen := generatorFunc(func(ctx context.Context, participant, prompt string, extended bool) (string, error) {
		if strings.Contains(prompt, "FINAL SYNTHESIS") {
			synthesisExtended = extended
		} else if extended {
			t.Errorf("round prompt for %s unexpectedly used extended reasoning", participant)
		}
		return base.GenerateFor(ctx, participant, prompt, extended)
	})

	m := New(gen, nil, nil, nil)
	ctx := context.Background()
	if _, err := m.Start(ctx, "reasoning flags", order); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for m.State() != StateComplete {
		if _, err := m.Advance(ctx); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}

	if !synthesisExtended {
		t.Error("synthesis must request extended reasoning")
	}
}

func TestGenerationFailureBecomesInlineMessage(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	gen := generatorFunc(func(_ context.Context, participant, _ string, _ bool) (string, error) {
		if participant == "chatgpt" {
			return "", core.ErrExecution(core.CodeGenerationFailed, "backend down")
		}
		return "A fine statement.", nil
	})

	m := New(gen, nil, nil, nil)
	msgs, err := m.Start(context.Background(), "failure handling", order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var failing *core.Message
	for i := range msgs {
		if msgs[i].Sender == "chatgpt" {
			failing = &msgs[i]
		}
	}
	if failing == nil {
		t.Fatal("expected an attributed message for the failing participant")
	}
	if !strings.Contains(failing.Content, "Error") {
		t.Errorf("failing message content = %q", failing.Content)
	}
	if !m.IsWaitingForUser() {
		t.Error("round must still complete despite the failure")
	}
}

func TestPersonaNamesInPromptsAndMessages(t *testing.T) {
	order := []string{"claude", "chatgpt"}
	personas := personaMap{
		"claude": {Name: "Johann", Participant: "claude", Background: "Baroque composer."},
	}

	var openingPrompt string
	base := debateGenerator(order)
	gen := generatorFunc(func(ctx context.Context, participant, prompt string, extended bool) (string, error) {
		if participant == "claude" && strings.Contains(prompt, "ROUND 1") {
			openingPrompt = prompt
		}
		return base.GenerateFor(ctx, participant, prompt, extended)
	})

	m := New(gen, personas, nil, nil)
	msgs, err := m.Start(context.Background(), "persona test", order)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !strings.Contains(openingPrompt, "Johann") {
		t.Error("opening prompt must address the speaker by persona name")
	}
	for _, msg := range msgs {
		if msg.Sender == "claude" && msg.Persona != "Johann" {
			t.Errorf("claude message missing persona: %#v", msg)
		}
	}
}
