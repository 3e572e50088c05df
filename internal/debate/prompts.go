package debate

import (
	"fmt"
	"strings"
)

func (m *Manager) roundPrompt(speaker string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DEBATE TOPIC: %s\n\n", m.topic)

	speakerName := m.displayName(speaker)
	others := m.otherSpeakers(speaker)

	switch m.state {
	case StateOpening:
		fmt.Fprintf(&b, `[DEBATE ROUND 1: OPENING STATEMENT]

You are %s participating in a collaborative intellectual exploration with other AI systems. This is not a competitive debate but rather a joint search for the most nuanced understanding.

Present your initial position on this topic in 2-3 paragraphs. Focus on:
1. Your core thesis or perspective
2. Key supporting evidence or reasoning
3. Any important nuances or qualifications

Be clear and concise. You'll have an opportunity to engage with other perspectives in subsequent rounds.
`, speakerName)

	case StateQuestioning:
		b.WriteString(`[DEBATE ROUND 2: DEFENSE & QUESTIONS]

Having heard all opening statements, this round has three components:

PART 1 - REFLECTION (1 paragraph):
Briefly defend or refine your initial position. If you see merit in another participant's argument that changes your thinking, acknowledge this explicitly.

PART 2 - DIRECTED QUESTIONS:
You must ask ONE specific, focused question to each other participant about their position:
`)
		for _, other := range others {
			otherName := m.displayName(other)
			if opening := m.findStatement(other, StateOpening); opening != "" {
				fmt.Fprintf(&b, "\n%s's opening statement: %q\n", otherName, opening)
				fmt.Fprintf(&b, "TO %s: [Ask a question that probes a potential weakness, requests clarification, or explores an interesting implication of their argument]\n\n", otherName)
			}
		}
		b.WriteString(`
PART 3 - POINTS OF AGREEMENT (1-2 sentences):
Identify at least one aspect of another participant's position that you find particularly compelling or persuasive.

Your response should show intellectual honesty - be willing to acknowledge strong points made by others and weaknesses in your own position if they exist.
`)

	case StateResponses:
		b.WriteString(`[DEBATE ROUND 3: RESPONSES & FINAL POSITION]

PART 1 - ANSWER DIRECTED QUESTIONS (1-2 paragraphs per question):
Respond to the specific questions directed to you:
`)
		for _, other := range others {
			if q, ok := m.questions[other][speaker]; ok {
				fmt.Fprintf(&b, "\nFROM %s: %q\nYour response: [Provide a thoughtful, honest answer]\n", m.displayName(other), q)
			}
		}
		b.WriteString(`
PART 2 - FINAL POSITION (2 paragraphs):
Present your final position on the topic, incorporating insights from the discussion. Be sure to:
- Address how your thinking may have evolved
- Integrate valuable points raised by others
- Present your strongest case with nuance and precision

Focus on clarity and intellectual honesty rather than simply defending your initial position.
`)

	case StateConsensus:
		b.WriteString(`[DEBATE ROUND 4: WEIGHTED CONSENSUS]

Now that all participants have presented their final positions, your task is to distribute 100 percentage points across all positions (including your own) based on their persuasiveness, evidence quality, and logical coherence.

This is not about "winning" but about recognizing the strongest elements of each position. Your total must equal exactly 100%.

PERCENTAGE ALLOCATIONS:
`)
		for _, s := range m.order {
			fmt.Fprintf(&b, "%s's position: __%% \n", m.displayName(s))
		}
		b.WriteString(`
JUSTIFICATION (2-3 sentences for each allocation):
Briefly explain your reasoning for each percentage allocation, focusing on the specific strengths or limitations of each position.

Remember that intellectual honesty is paramount - you should allocate percentages based on argument strength, not loyalty to your own position.
`)
	}

	return b.String()
}

// synthesisPrompt builds the final prompt combining every final position with
// the averaged consensus table.
func (m *Manager) synthesisPrompt() string {
	avg := m.AverageScores()

	var consensus strings.Builder
	consensus.WriteString("CONSENSUS SCORES:\n")
	for _, speaker := range m.order {
		fmt.Fprintf(&consensus, "Position of %s: %d%%\n", m.displayName(speaker), avg[speaker])
	}

	var positions strings.Builder
	positions.WriteString("FINAL POSITIONS:\n")
	for _, speaker := range m.order {
		position, ok := m.finalPositions[speaker]
		if !ok {
			position = "No final position provided"
		}
		fmt.Fprintf(&positions, "%s's position:\n%q\n\n", m.displayName(speaker), position)
	}

	return fmt.Sprintf(`[FINAL SYNTHESIS]

You will now generate a final synthesis of this debate on %q based on all participants' final positions and their weighted consensus scores.

Each AI participant has allocated percentage points to indicate which arguments they found most persuasive:

%s

%s

Based on these allocations and the content of the final positions, create a synthesis that:

1. Weighs each perspective according to its consensus score
2. Identifies the strongest elements from each position
3. Creates an integrated view that acknowledges tensions or unresolved questions
4. Highlights areas of consensus among all participants
5. Suggests potential directions for further exploration

Your synthesis should not simply average positions but create a higher-order integration that captures the most valuable insights from the collaborative exploration.
`, m.topic, consensus.String(), positions.String())
}
