package debate

import (
	"testing"
)

func TestExtractQuestions_Markers(t *testing.T) {
	response := `PART 1 - REFLECTION: My position stands.

PART 2 - DIRECTED QUESTIONS:
TO Chatgpt: How do you reconcile your claim with the observed data?

TO Gemini: What evidence would change your mind?

PART 3 - POINTS OF AGREEMENT: Gemini's framing was compelling.`

	targets := map[string]string{
		"chatgpt": "Chatgpt",
		"gemini":  "Gemini",
	}

	questions := extractQuestions(response, targets)

	if got := questions["chatgpt"]; got != "How do you reconcile your claim with the observed data?" {
		t.Errorf("chatgpt question = %q", got)
	}
	if got := questions["gemini"]; got != "What evidence would change your mind?" {
		t.Errorf("gemini question = %q", got)
	}
}

func TestExtractQuestions_SentenceFallback(t *testing.T) {
	response := "I appreciate the arguments so far. Gemini, could your model survive contact with adversarial inputs?"

	questions := extractQuestions(response, map[string]string{"gemini": "Gemini"})

	q, ok := questions["gemini"]
	if !ok {
		t.Fatal("expected a question extracted for gemini")
	}
	if q == "" || q[len(q)-1] != '?' {
		t.Errorf("unexpected question %q", q)
	}
}

func TestExtractQuestions_MissingIsAbsent(t *testing.T) {
	questions := extractQuestions("No questions here at all.", map[string]string{"gemini": "Gemini"})
	if _, ok := questions["gemini"]; ok {
		t.Error("expected no entry for gemini")
	}
}

func TestExtractConsensusScores_MarkerVariants(t *testing.T) {
	response := `PERCENTAGE ALLOCATIONS:
Claude's position: 40%
Chatgpt: 35%
Gemini - 25%

JUSTIFICATION: ...`

	targets := map[string]string{
		"claude":  "Claude",
		"chatgpt": "Chatgpt",
		"gemini":  "Gemini",
	}

	scores, total := extractConsensusScores(response, targets)
	if total != 100 {
		t.Fatalf("total = %d, want 100", total)
	}
	if scores["claude"] != 40 || scores["chatgpt"] != 35 || scores["gemini"] != 25 {
		t.Errorf("scores = %v", scores)
	}
}

func TestExtractConsensusScores_NoisyText(t *testing.T) {
	response := "Claude's position: roughly 42.5% because of the stronger evidence."

	scores, _ := extractConsensusScores(response, map[string]string{"claude": "Claude"})
	if scores["claude"] != 42 {
		t.Errorf("score = %d, want 42 (truncated)", scores["claude"])
	}
}

func TestExtractConsensusScores_AbsenceNotZero(t *testing.T) {
	response := "Claude's position: 60%\nChatgpt: 40%"
	targets := map[string]string{
		"claude":  "Claude",
		"chatgpt": "Chatgpt",
		"gemini":  "Gemini",
	}

	scores, _ := extractConsensusScores(response, targets)
	if _, ok := scores["gemini"]; ok {
		t.Error("gemini must be absent, not zero")
	}
	if len(scores) != 2 {
		t.Errorf("scores = %v", scores)
	}
}

func TestNormalizeScores_RescalesTo100(t *testing.T) {
	scores := map[string]int{"a": 50, "b": 50, "c": 30}
	scores = normalizeScores(scores, 130)

	total := 0
	for _, s := range scores {
		total += s
	}
	if total < 99 || total > 100 {
		t.Errorf("normalized total = %d, want 100 within truncation tolerance", total)
	}
	if !(scores["a"] == scores["b"] && scores["a"] > scores["c"]) {
		t.Errorf("relative ordering not preserved: %v", scores)
	}
}

func TestScoresInTolerance(t *testing.T) {
	for total, want := range map[int]bool{100: true, 95: true, 105: true, 94: false, 130: false, 0: false} {
		if got := scoresInTolerance(total); got != want {
			t.Errorf("scoresInTolerance(%d) = %v, want %v", total, got, want)
		}
	}
}

func TestAverageScores_SparseDividesByVoterCount(t *testing.T) {
	// Only two of three debaters scored z.
	scores := map[string]map[string]int{
		"x": {"y": 50, "z": 50},
		"y": {"x": 70, "z": 30},
		"z": {"x": 60, "y": 40},
	}
	avg := averageScores(scores, []string{"x", "y", "z"})

	if avg["z"] != 40 { // (50+30)/2, not /3
		t.Errorf("avg[z] = %d, want 40", avg["z"])
	}
	if avg["x"] != 65 || avg["y"] != 45 {
		t.Errorf("avg = %v", avg)
	}
}

func TestAverageScores_NoVotes(t *testing.T) {
	avg := averageScores(map[string]map[string]int{}, []string{"x", "y"})
	if avg["x"] != 0 || avg["y"] != 0 {
		t.Errorf("avg = %v, want zeros", avg)
	}
}
