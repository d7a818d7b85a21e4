package app

import (
	"fmt"

	"quiz-engine/internal/domain"
)

// Controller drives one user's quiz sessions through Idle, InProgress and Finished.
// It is not safe for concurrent use; Runner serializes access to it.
type Controller struct {
	bank    *domain.QuestionBank
	rnd     Rand
	state   domain.SessionState
	session *sessionState
}

func NewController(bank *domain.QuestionBank, rnd Rand) *Controller {
	return &Controller{bank: bank, rnd: rnd, state: domain.StateIdle}
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.SessionState {
	return c.state
}

// Start begins a session over a shuffled copy of the category's questions.
func (c *Controller) Start(category string) (domain.View, error) {
	if c.state != domain.StateIdle {
		return domain.View{}, c.invalid("start")
	}
	questions, err := c.bank.QuestionsFor(category)
	if err != nil {
		return domain.View{}, err
	}
	c.session = newSessionState(category, questions, c.rnd)
	c.state = domain.StateInProgress
	return c.session.view(), nil
}

// CurrentView projects the current question without side effects.
func (c *Controller) CurrentView() (domain.View, error) {
	if c.state != domain.StateInProgress {
		return domain.View{}, c.invalid("view")
	}
	if err := c.session.checkIndex(); err != nil {
		return domain.View{}, err
	}
	return c.session.view(), nil
}

// SubmitAnswer scores selected for an unresolved question and advances.
// An empty selection advances without scoring and leaves the question open.
func (c *Controller) SubmitAnswer(selected string) (domain.Update, error) {
	if err := c.ready("answer"); err != nil {
		return domain.Update{}, err
	}
	if selected != "" {
		if !c.session.question().HasOption(selected) {
			return domain.Update{}, fmt.Errorf("%w: %q", domain.ErrOptionNotFound, selected)
		}
		c.session.answer(selected)
	}
	return c.next(), nil
}

// Skip marks an unresolved question as skipped and advances.
func (c *Controller) Skip() (domain.Update, error) {
	if err := c.ready("skip"); err != nil {
		return domain.Update{}, err
	}
	c.session.skip()
	return c.next(), nil
}

// Previous steps back one question. It never touches statuses or score.
func (c *Controller) Previous() (domain.Update, error) {
	if err := c.ready("previous"); err != nil {
		return domain.Update{}, err
	}
	c.session.back()
	return c.snapshot(), nil
}

// OnTimerExpired times out an unresolved question and advances.
func (c *Controller) OnTimerExpired() (domain.Update, error) {
	if err := c.ready("timeout"); err != nil {
		return domain.Update{}, err
	}
	c.session.timeOut()
	return c.next(), nil
}

// FinalSummary returns the result of a finished session.
func (c *Controller) FinalSummary() (domain.Summary, error) {
	if c.state != domain.StateFinished {
		return domain.Summary{}, c.invalid("summary")
	}
	return c.session.summary(), nil
}

// Restart discards the session and returns to Idle.
func (c *Controller) Restart() domain.Update {
	c.session = nil
	c.state = domain.StateIdle
	return c.snapshot()
}

// Snapshot reports the state along with the view or summary that goes with it.
func (c *Controller) Snapshot() domain.Update {
	return c.snapshot()
}

func (c *Controller) ready(op string) error {
	if c.state != domain.StateInProgress {
		return c.invalid(op)
	}
	return c.session.checkIndex()
}

func (c *Controller) next() domain.Update {
	if c.session.advance() {
		c.session.settle()
		c.state = domain.StateFinished
	}
	return c.snapshot()
}

func (c *Controller) snapshot() domain.Update {
	update := domain.Update{State: c.state}
	switch c.state {
	case domain.StateInProgress:
		view := c.session.view()
		update.View = &view
	case domain.StateFinished:
		summary := c.session.summary()
		update.Summary = &summary
	}
	return update
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", domain.ErrInvalidStateTransition, op, c.state)
}
