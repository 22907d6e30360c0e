package devicegrant

import "strings"

// Ready-made configurations for services known to support the device grant.
// These are plain data factories: each call returns a fresh Config value and
// nothing is shared between flows built from them.

const (
	githubBaseURL = "https://github.com"
	gitlabBaseURL = "https://gitlab.com"
)

// GitHub returns a Config for github.com.
// Register the OAuth app at https://github.com/settings/developers and
// enable device flow for it.
func GitHub(clientID string, scopes ...string) Config {
	return GitHubEnterprise(githubBaseURL, clientID, scopes...)
}

// GitHubEnterprise returns a Config for a self-hosted GitHub instance at
// baseURL.
func GitHubEnterprise(baseURL, clientID string, scopes ...string) Config {
	base := strings.TrimRight(baseURL, "/")
	return Config{
		ClientID:      clientID,
		DeviceAuthURL: base + "/login/device/code",
		TokenURL:      base + "/login/oauth/access_token",
		Scopes:        scopes,
	}
}

// GitLab returns a Config for a GitLab instance at baseURL. Pass an empty
// baseURL for gitlab.com.
func GitLab(baseURL, clientID string, scopes ...string) Config {
	if baseURL == "" {
		baseURL = gitlabBaseURL
	}
	base := strings.TrimRight(baseURL, "/")
	return Config{
		ClientID:      clientID,
		DeviceAuthURL: base + "/oauth/authorize_device",
		TokenURL:      base + "/oauth/token",
		Scopes:        scopes,
	}
}

// Google returns a Config for Google's OAuth endpoints. Google only allows
// a limited scope set for the device grant; see
// https://developers.google.com/identity/protocols/oauth2/limited-input-device
func Google(clientID string, scopes ...string) Config {
	return Config{
		ClientID:      clientID,
		DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
		TokenURL:      "https://oauth2.googleapis.com/token",
		Scopes:        scopes,
	}
}
