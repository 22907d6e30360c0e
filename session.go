package devicegrant

import "time"

// Session holds the outcome of one device authorization request
// (RFC 8628 section 3.2). It is a value type: the Flow keeps its own copy,
// so mutating a returned Session never affects polling.
//
// DeviceCode is excluded from JSON on purpose. A serialized session is meant
// for display, and the device code must only ever travel to the token
// endpoint.
type Session struct {
	DeviceCode              string `json:"-"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"` // seconds from issuance
	Interval                int    `json:"interval"`   // minimum polling gap in seconds

	issuedAt time.Time
}

// IssuedAt returns the local time the session was obtained.
func (s Session) IssuedAt() time.Time { return s.issuedAt }

// ExpiresAt returns the moment after which the device code is no longer
// valid and polling must stop.
func (s Session) ExpiresAt() time.Time {
	return s.issuedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}
