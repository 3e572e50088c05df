package core

import "time"

// Message is a single entry in the conversation log. The log is append-only:
// once a message has been recorded it is never mutated.
type Message struct {
	// Sender is who produced the message: "user", "system", "synthesis",
	// or a participant identifier.
	Sender string `json:"sender"`

	// Content is the message text.
	Content string `json:"content"`

	// Target is the participant the message was addressed to, if any.
	Target ParticipantID `json:"target,omitempty"`

	// Timestamp records when the message was appended.
	Timestamp time.Time `json:"timestamp"`

	// Participant is the backend that generated the content, when the
	// sender is displayed under a persona name.
	Participant ParticipantID `json:"participant,omitempty"`

	// Persona is the character name the participant spoke as, if assigned.
	Persona string `json:"persona,omitempty"`

	// Round is the debate round index (1-4) for debate messages, 0 for the
	// session banner and 5 for synthesis.
	Round int `json:"round,omitempty"`

	// RoundLabel is the human-readable debate state name for debate messages.
	RoundLabel string `json:"round_label,omitempty"`

	// IsSystem marks orchestrator notices (round transitions, command output).
	IsSystem bool `json:"is_system,omitempty"`

	// IsSynthesis marks the final debate synthesis message.
	IsSynthesis bool `json:"is_synthesis,omitempty"`

	// SpeakerIndex and TotalSpeakers describe the speaker's place within a
	// debate round (1-based), for display purposes.
	SpeakerIndex  int `json:"speaker_index,omitempty"`
	TotalSpeakers int `json:"total_speakers,omitempty"`
}

// SystemMessage builds a system notice message.
func SystemMessage(content string) Message {
	return Message{
		Sender:    "system",
		Content:   content,
		Timestamp: time.Now(),
		IsSystem:  true,
	}
}

// DisplayName returns the name the message should be attributed to: the
// persona if one was active, else the sender.
func (m Message) DisplayName() string {
	if m.Persona != "" {
		return m.Persona
	}
	return m.Sender
}
