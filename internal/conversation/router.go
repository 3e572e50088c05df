// Package conversation orchestrates multi-participant chat: addressing,
// recipient selection, role and persona state, command dispatch, and the
// handoff to debate mode.
package conversation

import (
	"sort"
	"strings"
)

// Router resolves @mention addressing and computes the recipients of a turn.
type Router struct {
	mentions map[string]string
	tokens   []string // mention tokens, longest first
}

// NewRouter creates a router with the built-in mention table.
func NewRouter() *Router {
	r := &Router{
		mentions: map[string]string{
			"@a":       "claude",
			"@c":       "claude",
			"@g":       "gemini",
			"@o":       "ollama",
			"@claude":  "claude",
			"@chatgpt": "chatgpt",
			"@gemini":  "gemini",
			"@ollama":  "ollama",
		},
	}
	r.rebuildTokens()
	return r
}

func (r *Router) rebuildTokens() {
	tokens := make([]string, 0, len(r.mentions))
	for token := range r.mentions {
		tokens = append(tokens, token)
	}
	// Longest first so "@claude" never matches as "@c" plus a remainder.
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	r.tokens = tokens
}

// ParseMentions resolves the first mention token found in the message,
// returning the target participant and the message with the token removed.
// No mention returns an empty target and the message unchanged.
func (r *Router) ParseMentions(message string) (string, string) {
	for _, token := range r.tokens {
		if strings.Contains(message, token) {
			cleaned := strings.TrimSpace(strings.Replace(message, token, "", 1))
			return r.mentions[token], cleaned
		}
	}
	return "", message
}

// Recipients computes which participants must respond to a turn: the
// explicit target when addressed, else every participant holding a role (in
// assignment order), else the default set.
func (r *Router) Recipients(target string, roleHolders, defaults []string) []string {
	if target != "" {
		return []string{target}
	}
	if len(roleHolders) > 0 {
		out := make([]string, len(roleHolders))
		copy(out, roleHolders)
		return out
	}
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// IsCommand reports whether a message is a slash command.
func (r *Router) IsCommand(message string) bool {
	return strings.HasPrefix(message, "/")
}

// ParseCommand splits a command into its name and arguments.
func (r *Router) ParseCommand(command string) (string, []string) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", nil
	}
	return strings.ToLower(parts[0]), parts[1:]
}
