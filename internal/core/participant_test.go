package core

import (
	"context"
	"testing"
)

type registryStub struct{ names []string }

func (r *registryStub) Get(name string) (Agent, error) { return nil, ErrNotFound("agent", name) }
func (r *registryStub) Has(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}
func (r *registryStub) List() []string                        { return r.names }
func (r *registryStub) Available(_ context.Context) []string  { return r.names }

func TestParticipantID_DisplayName(t *testing.T) {
	cases := map[ParticipantID]string{
		ParticipantClaude:  "Claude",
		ParticipantChatGPT: "Chatgpt",
		ParticipantGemini:  "Gemini",
		"":                 "",
	}
	for id, want := range cases {
		if got := id.DisplayName(); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"default", "debater", "creative", "researcher", " Debater "} {
		if _, err := ParseRole(s); err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseRole("moderator"); err == nil {
		t.Fatalf("expected error for unknown role")
	} else if !IsCategory(err, ErrCatValidation) {
		t.Fatalf("expected validation category, got %v", GetCategory(err))
	}
}

func TestParseParticipant(t *testing.T) {
	reg := &registryStub{names: []string{"claude", "gemini"}}

	id, err := ParseParticipant(" Claude ", reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != ParticipantClaude {
		t.Fatalf("expected claude, got %s", id)
	}

	if _, err := ParseParticipant("mistral", reg); err == nil {
		t.Fatalf("expected error for unregistered participant")
	} else if !IsCategory(err, ErrCatNotFound) {
		t.Fatalf("expected not_found category, got %v", GetCategory(err))
	}

	if _, err := ParseParticipant("  ", reg); err == nil {
		t.Fatalf("expected error for empty identifier")
	}
}

func TestDomainError_IsAndUnwrap(t *testing.T) {
	base := ErrValidation(CodeInvalidRole, "bad role")
	wrapped := ErrValidation(CodeInvalidRole, "other message")
	if !base.Is(wrapped) {
		t.Fatalf("errors with same category and code should match")
	}
	if base.Is(ErrNotFound("participant", "x")) {
		t.Fatalf("errors with different categories should not match")
	}
}
