package devicegrant

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession indicates PollToken was called before RequestCode, or on
	// a session that has already been resolved.
	ErrNoSession = errors.New("no active device session: request a device code first")

	// ErrAccessDenied indicates the user rejected the authorization request.
	ErrAccessDenied = errors.New("access denied by user")

	// ErrCodeExpired indicates the device code expired before the user
	// completed authorization. Restart with a new RequestCode.
	ErrCodeExpired = errors.New("device code expired")
)

// TransportError indicates a request to one of the endpoints could not be
// completed: network failure, timeout, or cancellation mid-request. The
// wrapped error is reachable via errors.Is/As, so a cancelled context still
// matches context.Canceled.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("requesting %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates the authorization server answered in a way the
// client cannot act on: a malformed body, missing required fields, or an
// error code outside the RFC 8628 set. Code is empty for shape problems.
type ProtocolError struct {
	Code        string
	Description string
}

func (e *ProtocolError) Error() string {
	if e.Code == "" {
		return e.Description
	}
	if e.Description == "" {
		return fmt.Sprintf("authorization server returned error %q", e.Code)
	}
	return fmt.Sprintf("authorization server returned error %q: %s", e.Code, e.Description)
}

// resolved reports whether err means the session reached a final verdict on
// the server, as opposed to a local or transient failure worth retrying the
// same session for.
func resolved(err error) bool {
	if errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrCodeExpired) {
		return true
	}
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Code != ""
}
