package devicegrant

import "context"

// SessionResult is delivered by RequestCodeAsync.
type SessionResult struct {
	Session Session
	Err     error
}

// TokenResult is delivered by PollTokenAsync and AuthenticateAsync.
type TokenResult struct {
	Token Token
	Err   error
}

// RequestCodeAsync runs RequestCode on its own goroutine and delivers the
// result on the returned channel. The channel is buffered, so the result is
// never lost even if the caller stops listening.
//
// The async variants run the exact same code as their blocking counterparts;
// only the goroutine doing the waiting differs. The single-writer rule still
// applies: do not start a second operation on the same Flow until the
// previous one has delivered.
func (f *Flow) RequestCodeAsync(ctx context.Context) <-chan SessionResult {
	ch := make(chan SessionResult, 1)
	go func() {
		session, err := f.RequestCode(ctx)
		ch <- SessionResult{Session: session, Err: err}
	}()
	return ch
}

// PollTokenAsync runs PollToken on its own goroutine and delivers the result
// on the returned channel. Cancel ctx to abort the poll loop promptly.
func (f *Flow) PollTokenAsync(ctx context.Context) <-chan TokenResult {
	ch := make(chan TokenResult, 1)
	go func() {
		token, err := f.PollToken(ctx)
		ch <- TokenResult{Token: token, Err: err}
	}()
	return ch
}

// AuthenticateAsync runs Authenticate on its own goroutine and delivers the
// result on the returned channel. The presenter is invoked from that
// goroutine once the device code arrives.
func (f *Flow) AuthenticateAsync(ctx context.Context, p Presenter) <-chan TokenResult {
	ch := make(chan TokenResult, 1)
	go func() {
		token, err := f.Authenticate(ctx, p)
		ch <- TokenResult{Token: token, Err: err}
	}()
	return ch
}
