package devicegrant

import (
	"context"
	"fmt"
	"time"
)

// slowDownStep is the fixed amount added to the polling interval whenever
// the server answers slow_down (RFC 8628 section 3.5).
const slowDownStep = 5 * time.Second

type outcome int

const (
	outcomeToken outcome = iota
	outcomePending
	outcomeSlowDown
	outcomeExpired
	outcomeDenied
)

// attemptResult is what one token-endpoint poll produced.
type attemptResult struct {
	outcome outcome
	token   Token
}

type attemptFunc func(ctx context.Context) (attemptResult, error)

// waiter abstracts how the poll loop suspends between attempts, so the
// outcome logic is written once and the suspension mechanism (a blocking
// timer in production, a recording fake in tests, a goroutine park in the
// async variant) stays swappable.
type waiter interface {
	// Wait blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case. A non-positive d only checks ctx.
	Wait(ctx context.Context, d time.Duration) error
}

// timerWaiter blocks the calling goroutine on a timer.
type timerWaiter struct{}

func (timerWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scheduler turns a sequence of poll attempts into a terminal result. One
// instance drives one PollToken call; it is not reused.
type scheduler struct {
	interval time.Duration // effective gap, only ever grows
	deadline time.Time
	waiter   waiter
	now      func() time.Time
}

// run loops: deadline check, sleep, attempt. The check sits before the sleep
// so no attempt is ever scheduled once the deadline has passed, and the
// sleep precedes every attempt including the first because the server needs
// a moment to register a freshly minted code.
func (s *scheduler) run(ctx context.Context, attempt attemptFunc) (Token, error) {
	for {
		if !s.now().Before(s.deadline) {
			return Token{}, ErrCodeExpired
		}
		if err := s.waiter.Wait(ctx, s.interval); err != nil {
			return Token{}, fmt.Errorf("waiting between polls: %w", err)
		}

		result, err := attempt(ctx)
		if err != nil {
			return Token{}, err
		}
		switch result.outcome {
		case outcomeToken:
			return result.token, nil
		case outcomePending:
			// keep polling, interval unchanged
		case outcomeSlowDown:
			s.interval += slowDownStep
		case outcomeExpired:
			return Token{}, ErrCodeExpired
		case outcomeDenied:
			return Token{}, ErrAccessDenied
		}
	}
}
