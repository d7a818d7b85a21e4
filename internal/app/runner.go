package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

// CommandKind names an event accepted by a Runner.
type CommandKind string

const (
	CommandStart    CommandKind = "start"
	CommandAnswer   CommandKind = "answer"
	CommandSkip     CommandKind = "skip"
	CommandPrevious CommandKind = "previous"
	CommandTick     CommandKind = "tick"
	CommandRestart  CommandKind = "restart"
	CommandSummary  CommandKind = "summary"
	CommandView     CommandKind = "view"
)

// Command is a single event for the session controller.
type Command struct {
	Kind     CommandKind
	Category string
	Option   string

	// firedAt is set on ticks delivered by the clock.
	firedAt time.Time
}

type event struct {
	cmd   Command
	reply chan result
}

type result struct {
	update domain.Update
	err    error
}

// Runner owns a Controller and applies user commands and clock ticks to it
// one at a time, in arrival order, from a single goroutine.
type Runner struct {
	id     string
	ctrl   *Controller
	clock  Clock
	logger *slog.Logger

	events  chan event
	cancel  context.CancelFunc
	stopped chan struct{}

	// resetAt is when the clock last restarted; owned by the run loop.
	resetAt time.Time

	mu          sync.Mutex
	closed      bool
	started     bool
	subscribers map[chan domain.Update]struct{}
}

func NewRunner(id string, ctrl *Controller, clock Clock, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		id:          id,
		ctrl:        ctrl,
		clock:       clock,
		logger:      logger.With("session_id", id),
		events:      make(chan event, 16),
		cancel:      func() {},
		stopped:     make(chan struct{}),
		subscribers: make(map[chan domain.Update]struct{}),
	}
}

// ID returns the session id.
func (r *Runner) ID() string {
	return r.id
}

// Run consumes events until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.stopped)
	defer r.closeSubscribers()

	if r.clock != nil {
		defer r.clock.Stop()
		go r.pumpTicks(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.events:
			update, err := r.apply(ev.cmd)
			if ev.reply != nil {
				ev.reply <- result{update: update, err: err}
			}
		}
	}
}

// Start launches Run in its own goroutine; Stop ends it.
func (r *Runner) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.started = true
	r.mu.Unlock()
	go func() {
		_ = r.Run(runCtx)
	}()
}

// Stop cancels the run loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, started := r.cancel, r.started
	r.mu.Unlock()
	cancel()
	if started {
		<-r.stopped
	}
}

// Do submits cmd and waits for the controller's answer.
func (r *Runner) Do(ctx context.Context, cmd Command) (domain.Update, error) {
	reply := make(chan result, 1)
	select {
	case r.events <- event{cmd: cmd, reply: reply}:
	case <-r.stopped:
		return domain.Update{}, domain.ErrRunnerStopped
	case <-ctx.Done():
		return domain.Update{}, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.update, res.err
	case <-r.stopped:
		select {
		case res := <-reply:
			return res.update, res.err
		default:
			return domain.Update{}, domain.ErrRunnerStopped
		}
	case <-ctx.Done():
		return domain.Update{}, ctx.Err()
	}
}

// Subscribe returns a channel that receives every published update.
// The caller must invoke the returned cancel function to avoid leaks.
func (r *Runner) Subscribe() (<-chan domain.Update, func()) {
	ch := make(chan domain.Update, 8)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Runner) pumpTicks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case firedAt := <-r.clock.C():
			select {
			case r.events <- event{cmd: Command{Kind: CommandTick, firedAt: firedAt}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (r *Runner) apply(cmd Command) (domain.Update, error) {
	var (
		update  domain.Update
		err     error
		publish = true
	)
	shownIndex := -1
	if r.ctrl.State() == domain.StateInProgress {
		if view, viewErr := r.ctrl.CurrentView(); viewErr == nil {
			shownIndex = view.Index
		}
	}
	switch cmd.Kind {
	case CommandStart:
		_, err = r.ctrl.Start(cmd.Category)
		if err == nil {
			update = r.ctrl.Snapshot()
			r.logger.Info("session started", "category", cmd.Category, "total", update.View.Total)
		}
	case CommandAnswer:
		update, err = r.ctrl.SubmitAnswer(cmd.Option)
	case CommandSkip:
		update, err = r.ctrl.Skip()
	case CommandPrevious:
		update, err = r.ctrl.Previous()
	case CommandTick:
		if r.ctrl.State() != domain.StateInProgress || r.staleTick(cmd) {
			return r.ctrl.Snapshot(), nil
		}
		update, publish, err = r.ctrl.Tick()
	case CommandRestart:
		update = r.ctrl.Restart()
		r.logger.Info("session restarted")
	case CommandSummary:
		var summary domain.Summary
		summary, err = r.ctrl.FinalSummary()
		update = domain.Update{State: r.ctrl.State(), Summary: &summary}
		publish = false
	case CommandView:
		update, publish = r.ctrl.Snapshot(), false
	default:
		return domain.Update{}, domain.ErrInvalidStateTransition
	}
	if err != nil {
		return domain.Update{}, err
	}

	if update.View != nil {
		update.View.SessionID = r.id
		// a question coming on screen gets a full first second
		if cmd.Kind == CommandStart || update.View.Index != shownIndex {
			r.resetClock()
		}
	}
	if publish {
		if update.State == domain.StateFinished && update.Summary != nil {
			r.logger.Info("session finished",
				"category", update.Summary.Category,
				"score", update.Summary.Score,
				"correct", update.Summary.Correct,
				"incorrect", update.Summary.Incorrect,
				"not_attempted", update.Summary.NotAttempted,
			)
		}
		r.broadcast(update)
	}
	return update, nil
}

func (r *Runner) resetClock() {
	if r.clock == nil {
		return
	}
	r.clock.Reset()
	r.resetAt = time.Now()
}

// staleTick reports whether a clock tick fired before the last reset and was
// still queued when the current question came on screen.
func (r *Runner) staleTick(cmd Command) bool {
	return !cmd.firedAt.IsZero() && cmd.firedAt.Before(r.resetAt)
}

func (r *Runner) broadcast(update domain.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- update:
		default:
			// slow subscriber: replace its oldest pending update with the newest one
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
}
