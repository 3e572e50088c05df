package conversation

import (
	"strings"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// Characters tracks persona assignments. At most one persona per participant
// and one participant per persona name: assignments evict in both directions.
type Characters struct {
	byName        map[string]core.Character // keyed by lowercased name
	byParticipant map[string]string         // participant -> lowercased name
	order         []string                  // lowercased names in assignment order
}

// NewCharacters creates an empty persona registry.
func NewCharacters() *Characters {
	return &Characters{
		byName:        make(map[string]core.Character),
		byParticipant: make(map[string]string),
	}
}

// Assign gives a participant a persona, evicting any persona the participant
// already holds and any prior holder of the same persona name.
func (c *Characters) Assign(participant core.ParticipantID, name, background string) core.Character {
	key := strings.ToLower(name)

	if existing, ok := c.byName[key]; ok {
		c.remove(strings.ToLower(existing.Name))
	}
	if oldName, ok := c.byParticipant[string(participant)]; ok {
		c.remove(oldName)
	}

	character := core.Character{
		Name:        name,
		Participant: participant,
		Background:  background,
	}
	c.byName[key] = character
	c.byParticipant[string(participant)] = key
	c.order = append(c.order, key)
	return character
}

func (c *Characters) remove(key string) {
	character, ok := c.byName[key]
	if !ok {
		return
	}
	delete(c.byName, key)
	if c.byParticipant[string(character.Participant)] == key {
		delete(c.byParticipant, string(character.Participant))
	}
	for i, n := range c.order {
		if n == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// CharacterFor returns the persona assigned to a participant.
func (c *Characters) CharacterFor(participant string) (core.Character, bool) {
	key, ok := c.byParticipant[strings.ToLower(participant)]
	if !ok {
		return core.Character{}, false
	}
	character, ok := c.byName[key]
	return character, ok
}

// ParticipantFor returns the participant holding a persona name
// (case-insensitive).
func (c *Characters) ParticipantFor(name string) (core.ParticipantID, bool) {
	character, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return character.Participant, true
}

// All returns all personas in assignment order.
func (c *Characters) All() []core.Character {
	out := make([]core.Character, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.byName[key])
	}
	return out
}

// Clear removes every persona assignment.
func (c *Characters) Clear() {
	c.byName = make(map[string]core.Character)
	c.byParticipant = make(map[string]string)
	c.order = nil
}

// ParseAddressing checks whether text starts with a known persona name
// followed by a comma or space, returning the owning participant and the
// text with the name and separator stripped. No match returns an empty
// participant and the text unchanged.
func (c *Characters) ParseAddressing(text string) (core.ParticipantID, string) {
	lower := strings.ToLower(text)
	for _, key := range c.order {
		if strings.HasPrefix(lower, key+",") || strings.HasPrefix(lower, key+" ") {
			cleaned := strings.TrimLeft(text[len(key):], " ,")
			return c.byName[key].Participant, cleaned
		}
	}
	return "", text
}
