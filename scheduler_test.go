package devicegrant

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeTimeline is a waiter whose Wait advances a fake clock instead of
// sleeping, recording every requested duration. It lets scheduler tests pin
// exact sleep sequences without wall-clock time.
type fakeTimeline struct {
	now    time.Time
	sleeps []time.Duration
}

func (tl *fakeTimeline) Wait(_ context.Context, d time.Duration) error {
	tl.sleeps = append(tl.sleeps, d)
	tl.now = tl.now.Add(d)
	return nil
}

func (tl *fakeTimeline) Now() time.Time { return tl.now }

// scriptedAttempts returns outcomes in order and counts how many attempts
// were made.
type scriptedAttempts struct {
	outcomes []outcome
	token    Token
	calls    int
}

func (s *scriptedAttempts) attempt(context.Context) (attemptResult, error) {
	if s.calls >= len(s.outcomes) {
		panic("attempt called past end of script")
	}
	out := s.outcomes[s.calls]
	s.calls++
	if out == outcomeToken {
		return attemptResult{outcome: outcomeToken, token: s.token}, nil
	}
	return attemptResult{outcome: out}, nil
}

func newTestScheduler(tl *fakeTimeline, interval, expiresIn time.Duration) *scheduler {
	return &scheduler{
		interval: interval,
		deadline: tl.now.Add(expiresIn),
		waiter:   tl,
		now:      tl.Now,
	}
}

func TestSchedulerReturnsTokenAndStops(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{
		outcomes: []outcome{outcomePending, outcomeToken},
		token:    Token{AccessToken: "abc"},
	}
	sched := newTestScheduler(tl, 5*time.Second, 60*time.Second)

	token, err := sched.run(context.Background(), script.attempt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "abc" {
		t.Errorf("token: want 'abc', got %q", token.AccessToken)
	}
	if script.calls != 2 {
		t.Errorf("attempts: want 2, got %d", script.calls)
	}
}

func TestSchedulerSleepsBeforeEveryAttemptIncludingFirst(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{
		outcomes: []outcome{outcomeToken},
		token:    Token{AccessToken: "abc"},
	}
	sched := newTestScheduler(tl, 5*time.Second, 60*time.Second)

	if _, err := sched.run(context.Background(), script.attempt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tl.sleeps) != 1 || tl.sleeps[0] != 5*time.Second {
		t.Errorf("sleeps: want [5s], got %v", tl.sleeps)
	}
}

func TestSchedulerSlowDownGrowsInterval(t *testing.T) {
	// interval=5s, step=5s, outcomes pending, pending, slow_down, pending,
	// token: the slow_down bump applies to every sleep after it.
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{
		outcomes: []outcome{outcomePending, outcomePending, outcomeSlowDown, outcomePending, outcomeToken},
		token:    Token{AccessToken: "abc"},
	}
	sched := newTestScheduler(tl, 5*time.Second, time.Hour)

	token, err := sched.run(context.Background(), script.attempt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "abc" {
		t.Errorf("token: want 'abc', got %q", token.AccessToken)
	}
	want := []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 10 * time.Second, 10 * time.Second}
	if len(tl.sleeps) != len(want) {
		t.Fatalf("sleeps: want %v, got %v", want, tl.sleeps)
	}
	for i := range want {
		if tl.sleeps[i] != want[i] {
			t.Errorf("sleep %d: want %v, got %v", i, want[i], tl.sleeps[i])
		}
	}
	if script.calls != 5 {
		t.Errorf("attempts: want 5, got %d", script.calls)
	}
}

func TestSchedulerExpiresAtDeadline(t *testing.T) {
	// expires_in=10s, interval=5s: attempts at t=5 and t=10, then the
	// deadline check fires before a third sleep is ever scheduled.
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{
		outcomes: []outcome{outcomePending, outcomePending},
	}
	sched := newTestScheduler(tl, 5*time.Second, 10*time.Second)

	_, err := sched.run(context.Background(), script.attempt)
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("want ErrCodeExpired, got %v", err)
	}
	if script.calls != 2 {
		t.Errorf("attempts: want 2, got %d", script.calls)
	}
}

func TestSchedulerServerExpiredIsTerminal(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{outcomes: []outcome{outcomeExpired}}
	sched := newTestScheduler(tl, 5*time.Second, time.Hour)

	_, err := sched.run(context.Background(), script.attempt)
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("want ErrCodeExpired, got %v", err)
	}
	if script.calls != 1 {
		t.Errorf("attempts: want 1, got %d", script.calls)
	}
}

func TestSchedulerDeniedIsTerminalDespiteRemainingBudget(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	script := &scriptedAttempts{outcomes: []outcome{outcomePending, outcomeDenied}}
	sched := newTestScheduler(tl, 5*time.Second, time.Hour)

	_, err := sched.run(context.Background(), script.attempt)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("want ErrAccessDenied, got %v", err)
	}
	if script.calls != 2 {
		t.Errorf("attempts: want 2, got %d", script.calls)
	}
}

func TestSchedulerAttemptErrorPropagatesImmediately(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(0, 0)}
	protoErr := &ProtocolError{Code: "unsupported_grant_type"}
	calls := 0
	attempt := func(context.Context) (attemptResult, error) {
		calls++
		return attemptResult{}, protoErr
	}
	sched := newTestScheduler(tl, 5*time.Second, time.Hour)

	_, err := sched.run(context.Background(), attempt)
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Code != "unsupported_grant_type" {
		t.Fatalf("want ProtocolError unsupported_grant_type, got %v", err)
	}
	if calls != 1 {
		t.Errorf("attempts: want 1, got %d", calls)
	}
}

func TestSchedulerCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := &scheduler{
		interval: time.Minute,
		deadline: time.Now().Add(time.Hour),
		waiter:   timerWaiter{},
		now:      time.Now,
	}
	start := time.Now()
	_, err := sched.run(ctx, func(context.Context) (attemptResult, error) {
		t.Fatal("attempt issued despite cancelled context")
		return attemptResult{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, want prompt abort", elapsed)
	}
}

func TestTimerWaiterZeroIntervalChecksContext(t *testing.T) {
	if err := (timerWaiter{}).Wait(context.Background(), 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (timerWaiter{}).Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}
