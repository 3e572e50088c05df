package conversation

import (
	"reflect"
	"testing"
)

func TestParseMentions_LongestMatchWins(t *testing.T) {
	r := NewRouter()

	target, cleaned := r.ParseMentions("@claude hello")
	if target != "claude" {
		t.Errorf("target = %q, want claude", target)
	}
	if cleaned != "hello" {
		t.Errorf("cleaned = %q, want %q", cleaned, "hello")
	}

	// The short alias still works on its own.
	target, cleaned = r.ParseMentions("@c hello")
	if target != "claude" || cleaned != "hello" {
		t.Errorf("(%q, %q)", target, cleaned)
	}

	// @chatgpt must not be eaten by @c.
	target, cleaned = r.ParseMentions("@chatgpt hello")
	if target != "chatgpt" || cleaned != "hello" {
		t.Errorf("(%q, %q)", target, cleaned)
	}
}

func TestParseMentions_NoMention(t *testing.T) {
	r := NewRouter()
	target, cleaned := r.ParseMentions("plain message")
	if target != "" || cleaned != "plain message" {
		t.Errorf("(%q, %q)", target, cleaned)
	}
}

func TestRecipients_FallbackChain(t *testing.T) {
	r := NewRouter()
	defaults := []string{"claude", "chatgpt", "gemini"}

	// Explicit target wins regardless of roles.
	got := r.Recipients("gemini", []string{"claude"}, defaults)
	if !reflect.DeepEqual(got, []string{"gemini"}) {
		t.Errorf("explicit target: %v", got)
	}

	// Role holders in assignment order.
	got = r.Recipients("", []string{"chatgpt", "claude"}, defaults)
	if !reflect.DeepEqual(got, []string{"chatgpt", "claude"}) {
		t.Errorf("role holders: %v", got)
	}

	// Empty registry falls back to the default set.
	got = r.Recipients("", nil, defaults)
	if !reflect.DeepEqual(got, defaults) {
		t.Errorf("defaults: %v", got)
	}
}

func TestParseCommand(t *testing.T) {
	r := NewRouter()

	if !r.IsCommand("/debate topic") || r.IsCommand("hello") {
		t.Error("IsCommand misclassified")
	}

	cmd, args := r.ParseCommand("/Role claude Debater")
	if cmd != "/role" {
		t.Errorf("cmd = %q", cmd)
	}
	if !reflect.DeepEqual(args, []string{"claude", "Debater"}) {
		t.Errorf("args = %v", args)
	}
}
