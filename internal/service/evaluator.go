package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// ErrNotEvaluable signals that a problem cannot be judged synchronously.
// Coding problems must go through the judge coordinator instead.
var ErrNotEvaluable = fmt.Errorf("problem type is not evaluable synchronously")

// EvaluateAnswer decides the verdict for a non-coding problem. Choice
// answers are compared after normalization; fill-in-blank answers are
// JSON lists compared entry by entry, case-insensitively, with
// surrounding whitespace ignored. Calling this with a coding problem is a
// caller error.
func EvaluateAnswer(problem models.Problem, answer string) (string, error) {
	switch problem.Type {
	case models.ProblemTypeChoice:
		return evaluateChoice(problem, answer), nil
	case models.ProblemTypeFill:
		return evaluateFill(problem, answer), nil
	case models.ProblemTypeCoding:
		return "", ErrNotEvaluable
	default:
		return models.VerdictError, nil
	}
}

func evaluateChoice(problem models.Problem, answer string) string {
	correct, okCorrect := NormalizeChoiceAnswer(problem.Answer, problem.Options)
	submitted, okSubmitted := NormalizeChoiceAnswer(answer, problem.Options)
	if !okCorrect || !okSubmitted {
		return models.VerdictWrong
	}
	if correct == submitted {
		return models.VerdictAccepted
	}
	return models.VerdictWrong
}

// evaluateFill expects both the stored answer and the submission to be
// JSON arrays of strings, e.g. ["hello","world"]. A length mismatch is
// wrong; a parse failure of either side is error.
func evaluateFill(problem models.Problem, answer string) string {
	correct, err := parseFillAnswers(problem.Answer)
	if err != nil {
		return models.VerdictError
	}
	submitted, err := parseFillAnswers(answer)
	if err != nil {
		return models.VerdictError
	}

	if len(correct) != len(submitted) {
		return models.VerdictWrong
	}

	for i := range correct {
		want := strings.ToLower(strings.TrimSpace(correct[i]))
		got := strings.ToLower(strings.TrimSpace(submitted[i]))
		if want != got {
			return models.VerdictWrong
		}
	}
	return models.VerdictAccepted
}

func parseFillAnswers(raw string) ([]string, error) {
	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
