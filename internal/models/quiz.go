package models

import (
	"fmt"
	"strings"
)

type QuestionType string

const (
	QuestionMCQ          QuestionType = "mcq"
	QuestionFillInBlanks QuestionType = "fill"
	QuestionTrueFalse    QuestionType = "truefalse"
	QuestionMatching     QuestionType = "matching"
)

// ParseQuestionType accepts the interactive spellings used by the CLI
// ("MCQ", "Fill in the Blanks", "True/False", "Matching") as well as the
// short forms.
func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mcq", "multiple choice":
		return QuestionMCQ, nil
	case "fill", "fill in the blanks", "fill-in-the-blanks":
		return QuestionFillInBlanks, nil
	case "truefalse", "true/false", "true-false":
		return QuestionTrueFalse, nil
	case "matching":
		return QuestionMatching, nil
	default:
		return "", fmt.Errorf("unknown question type: %q", s)
	}
}

type QuizRequest struct {
	Type         QuestionType `json:"type"`
	NumQuestions int          `json:"num_questions"`
	Difficulty   string       `json:"difficulty"` // "easy" | "medium" | "hard"
	Language     string       `json:"language"`   // output language code, e.g. "en", "hi"
}

// MatchingQuiz holds the two independently shuffled columns of a matching
// puzzle. The original pairing is deliberately discarded: the answer key is
// the generator's original line order.
type MatchingQuiz struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Render prints the columns side by side, one pair per line.
func (m MatchingQuiz) Render() string {
	var b strings.Builder
	for i := 0; i < len(m.Left) && i < len(m.Right); i++ {
		fmt.Fprintf(&b, "%d. %s | %s\n", i+1, m.Left[i], m.Right[i])
	}
	return strings.TrimSuffix(b.String(), "\n")
}
