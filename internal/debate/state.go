// Package debate implements the structured multi-round debate protocol:
// opening statements, cross-examination, final positions, weighted consensus
// voting, and synthesis.
package debate

// State identifies a phase of the debate protocol.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateQuestioning
	StateResponses
	StateConsensus
	StateSynthesis
	StateComplete
)

// roundLimit is the number of numbered rounds before synthesis.
const roundLimit = 4

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "round_1_opening"
	case StateQuestioning:
		return "round_2_questioning"
	case StateResponses:
		return "round_3_responses"
	case StateConsensus:
		return "round_4_consensus"
	case StateSynthesis:
		return "final_synthesis"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Round returns the 1-based round index for numbered rounds, 5 for
// synthesis, and 0 otherwise.
func (s State) Round() int {
	switch s {
	case StateOpening, StateQuestioning, StateResponses, StateConsensus:
		return int(s)
	case StateSynthesis:
		return 5
	default:
		return 0
	}
}

// Label returns the human-readable round name used in transition messages
// and message metadata.
func (s State) Label() string {
	switch s {
	case StateOpening:
		return "Opening Statements"
	case StateQuestioning:
		return "Defense & Questions"
	case StateResponses:
		return "Responses & Final Positions"
	case StateConsensus:
		return "Weighted Consensus"
	case StateSynthesis:
		return "Final Synthesis"
	default:
		return ""
	}
}

// isNumberedRound reports whether the state is one of the four debate rounds.
func (s State) isNumberedRound() bool {
	return s >= StateOpening && s <= StateConsensus
}
