package entities

// Verdict is the grading outcome for one spoken answer.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// Valid reports whether the verdict is one of the three fixed values.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictCorrect, VerdictPartial, VerdictIncorrect:
		return true
	}
	return false
}

// GradeResult is the structured outcome of grading one answer.
type GradeResult struct {
	Verdict     Verdict `json:"verdict"`
	Feedback    string  `json:"feedback"`
	Correction  string  `json:"correction"`
	Explanation string  `json:"explanation"`
}

// Voice describes one synthesis voice offered by the speech provider.
type Voice struct {
	VoiceID     string   `json:"voice_id"`
	Name        string   `json:"name"`
	Languages   []string `json:"languages"`
	Description string   `json:"description"`
}
