package domain

import "fmt"

// Scoring constants applied to every session.
const (
	PointsCorrect      = 4
	PointsWrong        = -1
	PointsNotAttempted = 0
)

// QuestionSeconds is the countdown length of every question.
const QuestionSeconds = 30

// OptionsPerQuestion is the number of options every question carries.
const OptionsPerQuestion = 4

// Question models an MCQ question; CorrectOption is always one of Options.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Options       []string `json:"options" yaml:"options"`
	CorrectOption string   `json:"answer" yaml:"answer"`
}

// HasOption reports whether option is one of the question's options.
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Category is a named, ordered list of questions.
type Category struct {
	Name      string     `json:"name" yaml:"name"`
	Position  int        `json:"position" yaml:"-"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// SessionState is the lifecycle state of a quiz session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateInProgress
	StateFinished
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionState) UnmarshalText(text []byte) error {
	for _, candidate := range []SessionState{StateIdle, StateInProgress, StateFinished} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// QuestionStatus tracks what happened to a question within a session.
type QuestionStatus int

const (
	StatusUnanswered QuestionStatus = iota
	StatusAnswered
	StatusSkipped
	StatusTimedOut
)

// Terminal reports whether the status can no longer change.
func (s QuestionStatus) Terminal() bool {
	return s != StatusUnanswered
}

func (s QuestionStatus) String() string {
	switch s {
	case StatusUnanswered:
		return "unanswered"
	case StatusAnswered:
		return "answered"
	case StatusSkipped:
		return "skipped"
	case StatusTimedOut:
		return "timed_out"
	}
	return "unknown"
}

func (s QuestionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *QuestionStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []QuestionStatus{StatusUnanswered, StatusAnswered, StatusSkipped, StatusTimedOut} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown question status %q", text)
}

// View is the read-only projection of the current question handed to the presentation layer.
type View struct {
	SessionID        string         `json:"sessionId,omitempty"`
	Category         string         `json:"category"`
	Index            int            `json:"index"`
	Total            int            `json:"total"`
	Prompt           string         `json:"prompt"`
	Options          []string       `json:"options"`
	Selected         string         `json:"selected,omitempty"`
	Status           QuestionStatus `json:"status"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Expired          bool           `json:"expired"`
	Score            int            `json:"score"`
}

// Summary is the final result of a finished session.
type Summary struct {
	Category     string `json:"category"`
	Score        int    `json:"score"`
	MaxScore     int    `json:"maxScore"`
	Correct      int    `json:"correct"`
	Incorrect    int    `json:"incorrect"`
	NotAttempted int    `json:"notAttempted"`
	Total        int    `json:"total"`
}

// Update is published after every committed session transition.
type Update struct {
	State   SessionState `json:"state"`
	View    *View        `json:"view,omitempty"`
	Summary *Summary     `json:"summary,omitempty"`
}
