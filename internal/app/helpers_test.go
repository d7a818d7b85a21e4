package app

import (
	"testing"

	"quiz-engine/internal/domain"
)

// identityRand never swaps, so sessions keep catalog order.
type identityRand struct{}

func (identityRand) Intn(n int) int { return n - 1 }

func testBank(t *testing.T) *domain.QuestionBank {
	t.Helper()
	bank, err := domain.NewQuestionBank([]domain.Category{
		{
			Name:     "Math",
			Position: 0,
			Questions: []domain.Question{
				{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: "4"},
				{Prompt: "What is 3 * 3?", Options: []string{"6", "8", "9", "12"}, CorrectOption: "9"},
			},
		},
		{
			Name:     "Science",
			Position: 1,
			Questions: []domain.Question{
				{Prompt: "Chemical symbol for water?", Options: []string{"H2O", "CO2", "O2", "NaCl"}, CorrectOption: "H2O"},
				{Prompt: "Closest planet to the sun?", Options: []string{"Venus", "Mercury", "Earth", "Mars"}, CorrectOption: "Mercury"},
				{Prompt: "Speed of light unit?", Options: []string{"m/s", "kg", "J", "N"}, CorrectOption: "m/s"},
				{Prompt: "Boiling point of water in C?", Options: []string{"90", "100", "110", "120"}, CorrectOption: "100"},
			},
		},
	})
	if err != nil {
		t.Fatalf("build bank: %v", err)
	}
	return bank
}

func mustStart(t *testing.T, c *Controller, category string) domain.View {
	t.Helper()
	view, err := c.Start(category)
	if err != nil {
		t.Fatalf("start %s: %v", category, err)
	}
	return view
}

func correctOption(t *testing.T, c *Controller) string {
	t.Helper()
	return c.session.question().CorrectOption
}

func wrongOption(t *testing.T, c *Controller) string {
	t.Helper()
	q := c.session.question()
	for _, o := range q.Options {
		if o != q.CorrectOption {
			return o
		}
	}
	t.Fatalf("question %q has no wrong option", q.Prompt)
	return ""
}
