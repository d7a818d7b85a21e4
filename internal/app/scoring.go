package app

import "quiz-engine/internal/domain"

// Outcome is the scoring result of a single answer.
type Outcome struct {
	Delta   int
	Correct bool
}

// ApplyAnswer scores a selected option against a question. It has no side effects.
func ApplyAnswer(q *domain.Question, selected string) Outcome {
	if selected == q.CorrectOption {
		return Outcome{Delta: domain.PointsCorrect, Correct: true}
	}
	return Outcome{Delta: domain.PointsWrong, Correct: false}
}
