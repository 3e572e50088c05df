package conversation

import (
	"testing"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

func TestAssign_EvictsBothDirections(t *testing.T) {
	c := NewCharacters()

	c.Assign(core.ParticipantClaude, "X", "")
	c.Assign(core.ParticipantChatGPT, "X", "")

	// The name moved: claude holds nothing, chatgpt holds X.
	if _, ok := c.CharacterFor("claude"); ok {
		t.Error("claude should have lost persona X")
	}
	got, ok := c.CharacterFor("chatgpt")
	if !ok || got.Name != "X" {
		t.Errorf("chatgpt persona = %#v", got)
	}

	// A second persona for the same participant evicts the first entirely.
	c.Assign(core.ParticipantChatGPT, "Y", "")
	if _, ok := c.ParticipantFor("X"); ok {
		t.Error("X should no longer be held by anyone")
	}
	got, _ = c.CharacterFor("chatgpt")
	if got.Name != "Y" {
		t.Errorf("chatgpt persona = %#v", got)
	}
}

func TestParticipantFor_CaseInsensitive(t *testing.T) {
	c := NewCharacters()
	c.Assign(core.ParticipantGemini, "Nica", "Jazz patron.")

	p, ok := c.ParticipantFor("nica")
	if !ok || p != core.ParticipantGemini {
		t.Errorf("ParticipantFor = %v, %v", p, ok)
	}
}

func TestParseAddressing(t *testing.T) {
	c := NewCharacters()
	c.Assign(core.ParticipantClaude, "Johann", "")

	p, cleaned := c.ParseAddressing("Johann, what do you think?")
	if p != core.ParticipantClaude || cleaned != "what do you think?" {
		t.Errorf("(%v, %q)", p, cleaned)
	}

	p, cleaned = c.ParseAddressing("johann please continue")
	if p != core.ParticipantClaude || cleaned != "please continue" {
		t.Errorf("(%v, %q)", p, cleaned)
	}

	p, cleaned = c.ParseAddressing("Nobody here")
	if p != "" || cleaned != "Nobody here" {
		t.Errorf("(%v, %q)", p, cleaned)
	}
}

func TestClear(t *testing.T) {
	c := NewCharacters()
	c.Assign(core.ParticipantClaude, "Johann", "")
	c.Assign(core.ParticipantGemini, "Nica", "")
	c.Clear()

	if len(c.All()) != 0 {
		t.Errorf("All() = %v after Clear", c.All())
	}
}
