package debate

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// extractQuestions pulls directed questions out of a questioning-round
// response. targets maps participant id to the display name the response is
// expected to use. A target with no extractable question is simply absent
// from the result.
func extractQuestions(response string, targets map[string]string) map[string]string {
	questions := make(map[string]string)

	for id, name := range targets {
		marker := "TO " + name + ":"
		if idx := strings.Index(response, marker); idx >= 0 {
			section := strings.TrimSpace(response[idx+len(marker):])

			// Cut at the next directed question, the next prompt part, or
			// the end of the paragraph, whichever comes first.
			for _, end := range []string{"TO ", "PART ", "\n\n"} {
				if cut := strings.Index(section, end); cut >= 0 {
					section = strings.TrimSpace(section[:cut])
				}
			}
			if section != "" {
				questions[id] = section
			}
			continue
		}

		// Fallback for less structured responses: a sentence naming the
		// target that contains a question mark, or one whose next sentence
		// does.
		sentences := strings.Split(response, ". ")
		for i, sentence := range sentences {
			if !strings.Contains(sentence, name) {
				continue
			}
			if strings.Contains(sentence, "?") {
				questions[id] = strings.TrimSpace(sentence)
				break
			}
			if i+1 < len(sentences) && strings.Contains(sentences[i+1], "?") {
				questions[id] = strings.TrimSpace(sentence + ". " + sentences[i+1])
				break
			}
		}
	}

	return questions
}

// extractConsensusScores parses percentage allocations from a consensus-round
// response. A target with no extractable score is absent from the result,
// never zero. The returned total is the raw sum before normalization.
func extractConsensusScores(response string, targets map[string]string) (scores map[string]int, rawTotal int) {
	scores = make(map[string]int)

	for id, name := range targets {
		markers := []string{
			name + "'s position: ",
			name + ": ",
			name + " - ",
		}

		for _, marker := range markers {
			idx := strings.Index(response, marker)
			if idx < 0 {
				continue
			}
			rest := response[idx+len(marker):]

			// Take everything up to the percent sign, then strip to digits
			// and dots.
			scoreText := rest
			if pct := strings.Index(rest, "%"); pct >= 0 {
				scoreText = rest[:pct]
			}
			scoreText = strings.TrimSpace(scoreText)

			var b strings.Builder
			for _, c := range scoreText {
				if (c >= '0' && c <= '9') || c == '.' {
					b.WriteRune(c)
				}
			}
			cleaned := b.String()

			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				scores[id] = int(f)
				break
			}
			if m := digitRun.FindString(cleaned); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					scores[id] = n
					break
				}
			}
		}
	}

	for _, s := range scores {
		rawTotal += s
	}
	return scores, rawTotal
}

// normalizeScores rescales scores proportionally so they sum to 100. Integer
// truncation per entry may leave the total slightly under 100; that drift is
// accepted. A zero total is returned unchanged.
func normalizeScores(scores map[string]int, rawTotal int) map[string]int {
	if rawTotal <= 0 {
		return scores
	}
	for id, s := range scores {
		scores[id] = int(float64(s) / float64(rawTotal) * 100)
	}
	return scores
}

// scoresInTolerance reports whether a raw score total is close enough to 100
// to be used without rescaling.
func scoresInTolerance(total int) bool {
	return total >= 95 && total <= 105
}
