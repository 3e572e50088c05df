package debate

// preferredSynthesizer is given the synthesis task when present in the
// speaker order.
const preferredSynthesizer = "claude"

// AverageScores computes per-participant average consensus scores. Each
// participant's average divides by the number of voters who actually scored
// it, since extraction may miss pairs and absence is not a zero vote.
func (m *Manager) AverageScores() map[string]int {
	return averageScores(m.consensusScores, m.order)
}

func averageScores(scores map[string]map[string]int, order []string) map[string]int {
	avg := make(map[string]int, len(order))
	for _, speaker := range order {
		avg[speaker] = 0
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, allocations := range scores {
		for target, score := range allocations {
			sums[target] += score
			counts[target]++
		}
	}

	for target, sum := range sums {
		if counts[target] > 0 {
			avg[target] = sum / counts[target]
		}
	}
	return avg
}

// synthesizer returns the participant that produces the final synthesis.
func (m *Manager) synthesizer() string {
	for _, speaker := range m.order {
		if speaker == preferredSynthesizer {
			return speaker
		}
	}
	return m.order[0]
}
