package core

import (
	"fmt"
	"strings"
)

// ParticipantID identifies a text-generation backend taking part in a
// conversation (e.g. "claude", "chatgpt", "gemini").
type ParticipantID string

const (
	ParticipantClaude  ParticipantID = "claude"
	ParticipantChatGPT ParticipantID = "chatgpt"
	ParticipantGemini  ParticipantID = "gemini"
	ParticipantOllama  ParticipantID = "ollama"
)

// DefaultParticipants returns the fallback participant set used when no
// roles have been assigned and no explicit target is given.
func DefaultParticipants() []ParticipantID {
	return []ParticipantID{ParticipantClaude, ParticipantChatGPT, ParticipantGemini}
}

// String returns the string representation of the participant ID.
func (p ParticipantID) String() string {
	return string(p)
}

// DisplayName returns a capitalized form of the identifier, used when the
// participant has no persona assigned.
func (p ParticipantID) DisplayName() string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseParticipant normalizes and validates a participant identifier against
// the set of registered agents.
func ParseParticipant(s string, registry AgentRegistry) (ParticipantID, error) {
	id := ParticipantID(strings.ToLower(strings.TrimSpace(s)))
	if id == "" {
		return "", ErrValidation(CodeInvalidParticipant, "participant identifier is empty")
	}
	if registry != nil && !registry.Has(string(id)) {
		return "", ErrNotFound("participant", string(id)).
			WithDetail("available", strings.Join(registry.List(), ", "))
	}
	return id, nil
}

// Role is a conversational role assignable to a participant.
type Role string

const (
	RoleDefault    Role = "default"
	RoleDebater    Role = "debater"
	RoleCreative   Role = "creative"
	RoleResearcher Role = "researcher"
)

// AllRoles returns the assignable roles.
func AllRoles() []Role {
	return []Role{RoleDefault, RoleDebater, RoleCreative, RoleResearcher}
}

// ValidRole checks if a role string is valid.
func ValidRole(r Role) bool {
	switch r {
	case RoleDefault, RoleDebater, RoleCreative, RoleResearcher:
		return true
	default:
		return false
	}
}

// ParseRole converts a string to a Role with validation.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !ValidRole(r) {
		return "", ErrValidation(CodeInvalidRole,
			fmt.Sprintf("invalid role %q (valid: default, debater, creative, researcher)", s))
	}
	return r, nil
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Character is a persona a participant roleplays as, decoupled from its
// underlying identity. At most one character per participant and one
// participant per character name may exist at any time.
type Character struct {
	Name        string        `json:"name"`
	Participant ParticipantID `json:"participant"`
	Background  string        `json:"background,omitempty"`
}
