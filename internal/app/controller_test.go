package app

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"quiz-engine/internal/domain"
)

func TestStartProducesPermutation(t *testing.T) {
	bank := testBank(t)
	original, _ := bank.QuestionsFor("Science")

	for seed := int64(1); seed <= 20; seed++ {
		c := NewController(bank, rand.New(rand.NewSource(seed)))
		mustStart(t, c, "Science")

		if len(c.session.order) != len(original) {
			t.Fatalf("seed %d: expected %d questions, got %d", seed, len(original), len(c.session.order))
		}
		seen := make(map[*domain.Question]int)
		for _, q := range c.session.order {
			seen[q]++
		}
		for _, q := range original {
			if seen[q] != 1 {
				t.Fatalf("seed %d: question %q appears %d times", seed, q.Prompt, seen[q])
			}
		}
	}
}

func TestShuffleIsUniform(t *testing.T) {
	questions := []*domain.Question{{Prompt: "a"}, {Prompt: "b"}, {Prompt: "c"}}
	rnd := rand.New(rand.NewSource(42))

	const rounds = 6000
	counts := make(map[string]int)
	for i := 0; i < rounds; i++ {
		var b strings.Builder
		for _, q := range shuffle(questions, rnd) {
			b.WriteString(q.Prompt)
		}
		counts[b.String()]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations, got %v", counts)
	}
	for perm, n := range counts {
		if n < 800 || n > 1200 {
			t.Fatalf("permutation %s drawn %d times out of %d", perm, n, rounds)
		}
	}
	if questions[0].Prompt != "a" || questions[2].Prompt != "c" {
		t.Fatalf("shuffle must not reorder its input")
	}
}

func TestStartInitialView(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	view := mustStart(t, c, "Math")

	if view.Index != 0 || view.Total != 2 {
		t.Fatalf("expected index 0 of 2, got %d of %d", view.Index, view.Total)
	}
	if view.Prompt != "What is 2 + 2?" || len(view.Options) != 4 {
		t.Fatalf("unexpected first question %+v", view)
	}
	if view.RemainingSeconds != domain.QuestionSeconds || view.Status != domain.StatusUnanswered || view.Selected != "" {
		t.Fatalf("unexpected initial countdown/status %+v", view)
	}
	if c.State() != domain.StateInProgress {
		t.Fatalf("expected in progress, got %s", c.State())
	}
}

func TestAllCorrect(t *testing.T) {
	c := NewController(testBank(t), rand.New(rand.NewSource(7)))
	mustStart(t, c, "Math")

	if _, err := c.SubmitAnswer(correctOption(t, c)); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	update, err := c.SubmitAnswer(correctOption(t, c))
	if err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if update.State != domain.StateFinished || update.Summary == nil {
		t.Fatalf("expected finished update, got %+v", update)
	}

	summary, err := c.FinalSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := domain.Summary{Category: "Math", Score: 8, MaxScore: 8, Correct: 2, Total: 2}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}
}

func TestAnswerThenSkip(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")

	if _, err := c.SubmitAnswer("4"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := c.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	summary, err := c.FinalSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Score != 4 || summary.Correct != 1 || summary.NotAttempted != 1 || summary.Incorrect != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestWrongAnswerCostsOnePoint(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")

	update, err := c.SubmitAnswer(wrongOption(t, c))
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if update.View.Score != -1 {
		t.Fatalf("expected running score -1, got %d", update.View.Score)
	}
	c.SubmitAnswer(correctOption(t, c))
	summary, _ := c.FinalSummary()
	if summary.Score != 3 || summary.Correct != 1 || summary.Incorrect != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestTimerExpiryAutoAdvances(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")

	var update domain.Update
	for i := 0; i < domain.QuestionSeconds; i++ {
		var err error
		update, _, err = c.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if update.View == nil || update.View.Index != 1 {
		t.Fatalf("expected auto-advance to question 2, got %+v", update)
	}
	if c.session.statuses[0] != domain.StatusTimedOut {
		t.Fatalf("expected first question timed out, got %s", c.session.statuses[0])
	}
	if c.session.notAttempted != 1 || c.session.score != 0 {
		t.Fatalf("expected one not attempted and no score, got %d / %d", c.session.notAttempted, c.session.score)
	}
	if update.View.RemainingSeconds != domain.QuestionSeconds {
		t.Fatalf("next question must start with a full countdown, got %d", update.View.RemainingSeconds)
	}
}

func TestTimedOutQuestionNeverRestarts(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")
	if _, err := c.OnTimerExpired(); err != nil {
		t.Fatalf("expire: %v", err)
	}

	update, err := c.Previous()
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if !update.View.Expired || update.View.RemainingSeconds != 0 {
		t.Fatalf("expected expired view, got %+v", update.View)
	}
	_, changed, err := c.Tick()
	if err != nil || changed {
		t.Fatalf("tick on timed out question changed=%v err=%v", changed, err)
	}
	if c.session.notAttempted != 1 {
		t.Fatalf("timeout must only be counted once, got %d", c.session.notAttempted)
	}
}

func TestPreviousKeepsAnswer(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")
	c.SubmitAnswer("4")

	update, err := c.Previous()
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if update.View.Index != 0 || update.View.Status != domain.StatusAnswered || update.View.Selected != "4" {
		t.Fatalf("expected answered first question, got %+v", update.View)
	}
	if update.View.Score != 4 {
		t.Fatalf("expected score unchanged at 4, got %d", update.View.Score)
	}
}

func TestPreviousAtFirstQuestionIsNoop(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	before := mustStart(t, c, "Math")

	update, err := c.Previous()
	if err != nil {
		t.Fatalf("previous at 0 must not fail: %v", err)
	}
	if update.View.Index != before.Index || update.View.Prompt != before.Prompt {
		t.Fatalf("expected unchanged view, got %+v", update.View)
	}
}

func TestResubmitDoesNotRescore(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")
	c.SubmitAnswer("4")
	c.Previous()

	update, err := c.SubmitAnswer("5")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if update.View.Index != 1 {
		t.Fatalf("resubmit must still advance, got index %d", update.View.Index)
	}
	if c.session.score != 4 || c.session.correct != 1 || c.session.incorrect != 0 {
		t.Fatalf("resubmit changed score: %d correct=%d incorrect=%d", c.session.score, c.session.correct, c.session.incorrect)
	}
	if c.session.answers[0] != "4" {
		t.Fatalf("resubmit replaced the recorded answer with %q", c.session.answers[0])
	}

	c.Previous()
	c.Skip()
	c.Previous()
	c.OnTimerExpired()
	if c.session.statuses[0] != domain.StatusAnswered || c.session.notAttempted != 0 {
		t.Fatalf("skip/timeout on a resolved question must be a no-op")
	}
}

func TestPreviousRoundTripKeepsCountdown(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")
	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if _, err := c.SubmitAnswer(""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	for i := 0; i < 3; i++ {
		c.Tick()
	}

	back, _ := c.Previous()
	if back.View.RemainingSeconds != 25 || back.View.Status != domain.StatusUnanswered {
		t.Fatalf("expected first question paused at 25s, got %+v", back.View)
	}
	forward, _ := c.SubmitAnswer("")
	if forward.View.RemainingSeconds != 27 || forward.View.Status != domain.StatusUnanswered {
		t.Fatalf("expected second question paused at 27s, got %+v", forward.View)
	}
}

func TestEmptySubmitLeavesQuestionOpen(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")

	update, err := c.SubmitAnswer("")
	if err != nil {
		t.Fatalf("empty submit: %v", err)
	}
	if update.View.Index != 1 || c.session.statuses[0] != domain.StatusUnanswered || c.session.score != 0 {
		t.Fatalf("empty submit must advance without scoring")
	}

	c.Previous()
	c.SubmitAnswer("4")
	c.SubmitAnswer("")
	summary, err := c.FinalSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Correct != 1 || summary.NotAttempted != 1 || summary.Score != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestUnknownOptionIsRejected(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")

	if _, err := c.SubmitAnswer("42"); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option not found, got %v", err)
	}
	view, _ := c.CurrentView()
	if view.Index != 0 || view.Status != domain.StatusUnanswered {
		t.Fatalf("rejected answer changed state: %+v", view)
	}
}

func TestStartUnknownCategory(t *testing.T) {
	c := NewController(testBank(t), identityRand{})

	if _, err := c.Start("Nonexistent"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
	if c.State() != domain.StateIdle || c.session != nil {
		t.Fatalf("failed start must not create a session")
	}
}

func TestInvalidTransitions(t *testing.T) {
	c := NewController(testBank(t), identityRand{})

	if _, err := c.SubmitAnswer("4"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("submit before start: %v", err)
	}
	if _, err := c.CurrentView(); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("view before start: %v", err)
	}
	if _, _, err := c.Tick(); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("tick before start: %v", err)
	}
	if _, err := c.FinalSummary(); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("summary before start: %v", err)
	}

	mustStart(t, c, "Math")
	if _, err := c.Start("Science"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("start while in progress: %v", err)
	}
	if _, err := c.FinalSummary(); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("summary while in progress: %v", err)
	}

	c.Skip()
	c.Skip()
	for name, op := range map[string]func() error{
		"submit":   func() error { _, err := c.SubmitAnswer("4"); return err },
		"skip":     func() error { _, err := c.Skip(); return err },
		"previous": func() error { _, err := c.Previous(); return err },
		"timeout":  func() error { _, err := c.OnTimerExpired(); return err },
	} {
		if err := op(); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("%s while finished: %v", name, err)
		}
	}
	if _, err := c.FinalSummary(); err != nil {
		t.Fatalf("summary after finish: %v", err)
	}
}

func TestRestartReturnsToIdle(t *testing.T) {
	c := NewController(testBank(t), identityRand{})
	mustStart(t, c, "Math")
	c.SubmitAnswer("4")
	c.SubmitAnswer("9")

	update := c.Restart()
	if update.State != domain.StateIdle || update.View != nil || update.Summary != nil {
		t.Fatalf("unexpected restart update %+v", update)
	}
	view := mustStart(t, c, "Science")
	if view.Score != 0 || view.Total != 4 {
		t.Fatalf("restarted session carried state over: %+v", view)
	}
}

func TestCountersNeverExceedTotal(t *testing.T) {
	bank := testBank(t)
	for seed := int64(1); seed <= 50; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		c := NewController(bank, rnd)
		mustStart(t, c, "Science")

		for steps := 0; c.State() == domain.StateInProgress; steps++ {
			if steps > 500 {
				t.Fatalf("seed %d: session never finished", seed)
			}
			switch rnd.Intn(6) {
			case 0:
				c.SubmitAnswer(correctOption(t, c))
			case 1:
				c.SubmitAnswer(wrongOption(t, c))
			case 2:
				c.SubmitAnswer("")
			case 3:
				c.Skip()
			case 4:
				c.Previous()
			case 5:
				c.Tick()
			}
			s := c.session
			if s.correct+s.incorrect+s.notAttempted > s.total() {
				t.Fatalf("seed %d: counters exceed total", seed)
			}
		}

		summary, err := c.FinalSummary()
		if err != nil {
			t.Fatalf("seed %d: summary: %v", seed, err)
		}
		if summary.Correct+summary.Incorrect+summary.NotAttempted != summary.Total {
			t.Fatalf("seed %d: counters %+v do not add up at finish", seed, summary)
		}
		if summary.Score != summary.Correct*domain.PointsCorrect+summary.Incorrect*domain.PointsWrong {
			t.Fatalf("seed %d: score %+v does not match counters", seed, summary)
		}
	}
}
