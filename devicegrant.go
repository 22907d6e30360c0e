// Package devicegrant implements the client side of the OAuth 2.0 Device
// Authorization Grant (RFC 8628): requesting a device/user code pair,
// handing the user code to a presentation layer, and polling the token
// endpoint until the user approves, denies, or the code expires.
package devicegrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const grantType = "urn:ietf:params:oauth:grant-type:device_code"

// defaultInterval is the polling interval used when the authorization server
// omits the interval field (RFC 8628 section 3.2).
const defaultInterval = 5 * time.Second

// Config holds the parameters of one OAuth client against one authorization
// server. It is copied at Flow construction and never mutated afterwards.
type Config struct {
	// ClientID is the OAuth client identifier. Required.
	ClientID string
	// DeviceAuthURL is the device authorization endpoint. Required.
	DeviceAuthURL string
	// TokenURL is the token endpoint polled for the access token. Required.
	TokenURL string
	// Scopes are requested verbatim, space-joined, in the given order.
	Scopes []string
	// Extra parameters are added to the device authorization request.
	// Some servers require non-standard fields such as audience.
	Extra url.Values
	// HTTPClient overrides the HTTP client used for both endpoints.
	// Leave nil to use a client with a 15 second timeout.
	HTTPClient *http.Client
}

// Presenter receives the session details that must be shown to the user
// so they can visit the verification URI and enter the user code.
// The prompt package provides implementations.
type Presenter interface {
	ShowSession(Session)
}

// Flow runs the device authorization grant against one authorization server.
// A Flow owns at most one active session at a time; RequestCode and PollToken
// must not be called concurrently on the same instance.
type Flow struct {
	cfg     Config
	client  *http.Client
	session *Session

	waiter waiter
	now    func() time.Time
}

// New creates a Flow from cfg. It fails if any required endpoint or the
// client ID is missing.
func New(cfg Config) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("devicegrant: Config.ClientID is required")
	}
	if cfg.DeviceAuthURL == "" {
		return nil, fmt.Errorf("devicegrant: Config.DeviceAuthURL is required")
	}
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("devicegrant: Config.TokenURL is required")
	}
	cfg.Scopes = append([]string(nil), cfg.Scopes...)
	if cfg.Extra != nil {
		extra := url.Values{}
		for key, values := range cfg.Extra {
			extra[key] = append([]string(nil), values...)
		}
		cfg.Extra = extra
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Flow{
		cfg:    cfg,
		client: client,
		waiter: timerWaiter{},
		now:    time.Now,
	}, nil
}

// RequestCode requests a device code and user code from the authorization
// server and stores the resulting session on the Flow. Calling it again
// replaces any previous session, which is how a caller restarts after expiry.
// The returned Session.UserCode must be shown to the user along with
// VerificationURI.
func (f *Flow) RequestCode(ctx context.Context) (Session, error) {
	form := url.Values{}
	form.Set("client_id", f.cfg.ClientID)
	if len(f.cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(f.cfg.Scopes, " "))
	}
	for key, values := range f.cfg.Extra {
		for _, v := range values {
			form.Add(key, v)
		}
	}

	var raw struct {
		DeviceCode              string `json:"device_code"`
		UserCode                string `json:"user_code"`
		VerificationURI         string `json:"verification_uri"`
		VerificationURL         string `json:"verification_url"`
		VerificationURIComplete string `json:"verification_uri_complete"`
		ExpiresIn               int    `json:"expires_in"`
		Interval                int    `json:"interval"`
	}
	if err := f.postForm(ctx, f.cfg.DeviceAuthURL, form, &raw); err != nil {
		return Session{}, err
	}

	// Google's device endpoint still answers with verification_url.
	uri := raw.VerificationURI
	if uri == "" {
		uri = raw.VerificationURL
	}
	if raw.DeviceCode == "" || raw.UserCode == "" || uri == "" || raw.ExpiresIn <= 0 {
		return Session{}, &ProtocolError{Description: "device authorization response is missing required fields"}
	}
	interval := raw.Interval
	if interval <= 0 {
		interval = int(defaultInterval / time.Second)
	}

	session := Session{
		DeviceCode:              raw.DeviceCode,
		UserCode:                raw.UserCode,
		VerificationURI:         uri,
		VerificationURIComplete: raw.VerificationURIComplete,
		ExpiresIn:               raw.ExpiresIn,
		Interval:                interval,
		issuedAt:                f.now(),
	}
	f.session = &session
	return session, nil
}

// PollToken polls the token endpoint using the session stored by RequestCode
// until the server issues an access token or the flow terminates. It sleeps
// the server-dictated interval before every attempt, including the first,
// and never issues an attempt past the session's expiry. It fails with
// ErrNoSession when RequestCode has not been called.
//
// Once the session is resolved (token issued, access denied, or code expired)
// it is discarded, so a later PollToken fails fast with ErrNoSession instead
// of re-polling a dead code. Cancel ctx to abort a sleep or an in-flight
// request; the session survives cancellation and transport failures.
func (f *Flow) PollToken(ctx context.Context) (Token, error) {
	if f.session == nil {
		return Token{}, ErrNoSession
	}
	session := *f.session

	sched := scheduler{
		interval: time.Duration(session.Interval) * time.Second,
		deadline: session.issuedAt.Add(time.Duration(session.ExpiresIn) * time.Second),
		waiter:   f.waiter,
		now:      f.now,
	}
	token, err := sched.run(ctx, func(ctx context.Context) (attemptResult, error) {
		return f.pollOnce(ctx, session)
	})
	if err == nil || resolved(err) {
		f.session = nil
	}
	return token, err
}

// Authenticate runs the whole flow: RequestCode, hand the session to the
// presenter, then PollToken. Pass a nil presenter to skip the display step.
func (f *Flow) Authenticate(ctx context.Context, p Presenter) (Token, error) {
	session, err := f.RequestCode(ctx)
	if err != nil {
		return Token{}, err
	}
	if p != nil {
		p.ShowSession(session)
	}
	return f.PollToken(ctx)
}

// pollOnce issues a single token request and maps the response onto a
// scheduling outcome. Only the error codes named by RFC 8628 section 3.5
// keep the loop going; anything else is terminal.
func (f *Flow) pollOnce(ctx context.Context, session Session) (attemptResult, error) {
	form := url.Values{}
	form.Set("client_id", f.cfg.ClientID)
	form.Set("device_code", session.DeviceCode)
	form.Set("grant_type", grantType)

	var raw struct {
		AccessToken      string `json:"access_token"`
		TokenType        string `json:"token_type"`
		Scope            string `json:"scope"`
		RefreshToken     string `json:"refresh_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := f.postForm(ctx, f.cfg.TokenURL, form, &raw); err != nil {
		return attemptResult{}, err
	}

	switch raw.Error {
	case "":
		if raw.AccessToken == "" {
			return attemptResult{}, &ProtocolError{Description: "token response carries neither access_token nor error"}
		}
		return attemptResult{outcome: outcomeToken, token: Token{
			AccessToken:  raw.AccessToken,
			TokenType:    raw.TokenType,
			Scope:        raw.Scope,
			RefreshToken: raw.RefreshToken,
		}}, nil
	case "authorization_pending":
		return attemptResult{outcome: outcomePending}, nil
	case "slow_down":
		return attemptResult{outcome: outcomeSlowDown}, nil
	case "expired_token":
		return attemptResult{outcome: outcomeExpired}, nil
	case "access_denied":
		return attemptResult{outcome: outcomeDenied}, nil
	default:
		return attemptResult{}, &ProtocolError{Code: raw.Error, Description: raw.ErrorDescription}
	}
}

// postForm POSTs form to endpoint as application/x-www-form-urlencoded and
// decodes the JSON response into v.
func (f *Flow) postForm(ctx context.Context, endpoint string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ProtocolError{Description: fmt.Sprintf("malformed response from %s: %v", endpoint, err)}
	}
	return nil
}
