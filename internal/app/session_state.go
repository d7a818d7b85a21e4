package app

import (
	"fmt"

	"quiz-engine/internal/domain"
)

// Rand is the random source used to shuffle questions. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// sessionState holds everything about one attempt at a category.
type sessionState struct {
	category  string
	order     []*domain.Question
	current   int
	statuses  []domain.QuestionStatus
	answers   []string
	remaining []int

	score        int
	correct      int
	incorrect    int
	notAttempted int
}

func newSessionState(category string, questions []*domain.Question, rnd Rand) *sessionState {
	order := shuffle(questions, rnd)
	remaining := make([]int, len(order))
	for i := range remaining {
		remaining[i] = domain.QuestionSeconds
	}
	return &sessionState{
		category:  category,
		order:     order,
		statuses:  make([]domain.QuestionStatus, len(order)),
		answers:   make([]string, len(order)),
		remaining: remaining,
	}
}

// shuffle returns a uniformly random permutation using Fisher-Yates.
func shuffle(questions []*domain.Question, rnd Rand) []*domain.Question {
	shuffled := make([]*domain.Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

func (s *sessionState) total() int {
	return len(s.order)
}

func (s *sessionState) checkIndex() error {
	if s.current < 0 || s.current >= len(s.order) {
		return fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, s.current, len(s.order))
	}
	return nil
}

func (s *sessionState) question() *domain.Question {
	return s.order[s.current]
}

func (s *sessionState) status() domain.QuestionStatus {
	return s.statuses[s.current]
}

// answer records a scored answer for the current question; it is a no-op once the question is terminal.
func (s *sessionState) answer(selected string) bool {
	if s.status().Terminal() {
		return false
	}
	outcome := ApplyAnswer(s.question(), selected)
	s.score += outcome.Delta
	if outcome.Correct {
		s.correct++
	} else {
		s.incorrect++
	}
	s.statuses[s.current] = domain.StatusAnswered
	s.answers[s.current] = selected
	return true
}

func (s *sessionState) skip() bool {
	if s.status().Terminal() {
		return false
	}
	s.statuses[s.current] = domain.StatusSkipped
	s.notAttempted++
	return true
}

func (s *sessionState) timeOut() bool {
	if s.status().Terminal() {
		return false
	}
	s.statuses[s.current] = domain.StatusTimedOut
	s.remaining[s.current] = 0
	s.notAttempted++
	return true
}

// advance moves to the next question and reports whether the session ran past the last one.
func (s *sessionState) advance() bool {
	if s.current == len(s.order)-1 {
		return true
	}
	s.current++
	return false
}

func (s *sessionState) back() {
	if s.current > 0 {
		s.current--
	}
}

// settle counts questions that never reached a terminal status as not attempted.
func (s *sessionState) settle() {
	for _, status := range s.statuses {
		if status == domain.StatusUnanswered {
			s.notAttempted++
		}
	}
}

func (s *sessionState) view() domain.View {
	q := s.question()
	status := s.status()
	return domain.View{
		Category:         s.category,
		Index:            s.current,
		Total:            len(s.order),
		Prompt:           q.Prompt,
		Options:          append([]string(nil), q.Options...),
		Selected:         s.answers[s.current],
		Status:           status,
		RemainingSeconds: s.remaining[s.current],
		Expired:          status == domain.StatusTimedOut,
		Score:            s.score,
	}
}

func (s *sessionState) summary() domain.Summary {
	return domain.Summary{
		Category:     s.category,
		Score:        s.score,
		MaxScore:     len(s.order) * domain.PointsCorrect,
		Correct:      s.correct,
		Incorrect:    s.incorrect,
		NotAttempted: s.notAttempted,
		Total:        len(s.order),
	}
}
