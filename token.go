package devicegrant

import "golang.org/x/oauth2"

// Token is the access token issued at the end of a successful flow
// (RFC 8628 section 3.5). Optional fields are empty when the server omits
// them; GitHub, for example, sends token_type and scope but no refresh token
// for device-flow apps.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// OAuth2 converts the token for use with golang.org/x/oauth2. The token type
// defaults to Bearer when the server did not name one.
func (t Token) OAuth2() *oauth2.Token {
	typ := t.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    typ,
		RefreshToken: t.RefreshToken,
	}
}

// TokenSource returns a static oauth2.TokenSource for the token, suitable
// for oauth2.NewClient.
func (t Token) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(t.OAuth2())
}
