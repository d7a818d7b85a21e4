package app

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/domain"
)

// SessionRepository abstracts where live session runners are registered (in-memory, Redis, etc).
// Touch marks a session as still active.
type SessionRepository interface {
	Save(ctx context.Context, runner *Runner) error
	Get(sessionID string) (*Runner, bool)
	Touch(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string)
}

// BankRepository provides the question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) (*domain.QuestionBank, error)
}

// QuizService opens and closes quiz sessions.
type QuizService struct {
	sessions SessionRepository
	banks    BankRepository
	newClock func() Clock
	newRand  func() Rand
	logger   *slog.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithTickInterval sets the countdown tick interval of new sessions.
func WithTickInterval(interval time.Duration) Option {
	return func(s *QuizService) {
		s.newClock = func() Clock { return NewTickerClock(interval) }
	}
}

// WithClock overrides how session clocks are created. Tests use it to drive ticks by hand.
func WithClock(newClock func() Clock) Option {
	return func(s *QuizService) {
		s.newClock = newClock
	}
}

// WithSeed makes question order reproducible; every session shuffles from the same seed.
func WithSeed(seed int64) Option {
	return func(s *QuizService) {
		if seed == 0 {
			return
		}
		s.newRand = func() Rand { return rand.New(rand.NewSource(seed)) }
	}
}

// WithLogger sets the logger handed to session runners.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) {
		s.logger = logger
	}
}

func NewQuizService(store SessionRepository, banks BankRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: store,
		banks:    banks,
		newClock: func() Clock { return NewTickerClock(time.Second) },
		newRand:  func() Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories lists the categories a session can be started with.
func (s *QuizService) Categories(ctx context.Context) ([]string, error) {
	bank, err := s.banks.GetBank(ctx)
	if err != nil {
		return nil, err
	}
	return bank.Categories(), nil
}

// Open creates a session runner, registers it and starts its event loop.
// The runner stops when ctx is canceled or Close is called.
func (s *QuizService) Open(ctx context.Context) (*Runner, error) {
	bank, err := s.banks.GetBank(ctx)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(uuid.NewString(), NewController(bank, s.newRand()), s.newClock(), s.logger)
	if err := s.sessions.Save(ctx, runner); err != nil {
		return nil, err
	}
	updates, _ := runner.Subscribe()
	runner.Start(ctx)
	go s.keepAlive(ctx, runner.ID(), updates)
	s.logger.Debug("session opened", "session_id", runner.ID())
	return runner, nil
}

// keepAlive touches the registry on every transition until the runner stops
// and closes its subscriptions.
func (s *QuizService) keepAlive(ctx context.Context, sessionID string, updates <-chan domain.Update) {
	for range updates {
		if err := s.sessions.Touch(ctx, sessionID); err != nil {
			s.logger.Warn("session touch failed", "session_id", sessionID, "error", err)
		}
	}
}

// Session returns a registered runner.
func (s *QuizService) Session(sessionID string) (*Runner, error) {
	runner, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return runner, nil
}

// Close stops a runner and drops it from the registry.
func (s *QuizService) Close(ctx context.Context, sessionID string) {
	runner, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	runner.Stop()
	s.sessions.Delete(ctx, sessionID)
	s.logger.Debug("session closed", "session_id", sessionID)
}
