package devicegrant_test

import (
	"testing"

	"github.com/waabox/devicegrant"
)

func TestGitHubConfig(t *testing.T) {
	cfg := devicegrant.GitHub("client_1", "repo", "read:org")
	if cfg.DeviceAuthURL != "https://github.com/login/device/code" {
		t.Errorf("device auth url: got %q", cfg.DeviceAuthURL)
	}
	if cfg.TokenURL != "https://github.com/login/oauth/access_token" {
		t.Errorf("token url: got %q", cfg.TokenURL)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[0] != "repo" {
		t.Errorf("scopes: got %v", cfg.Scopes)
	}
	if _, err := devicegrant.New(cfg); err != nil {
		t.Errorf("config not usable: %v", err)
	}
}

func TestGitHubEnterpriseConfigJoinsBaseURL(t *testing.T) {
	cfg := devicegrant.GitHubEnterprise("https://ghe.example.com/", "client_1")
	if cfg.DeviceAuthURL != "https://ghe.example.com/login/device/code" {
		t.Errorf("device auth url: got %q", cfg.DeviceAuthURL)
	}
}

func TestGitLabConfigDefaultsToGitLabCom(t *testing.T) {
	cfg := devicegrant.GitLab("", "client_1", "read_api")
	if cfg.DeviceAuthURL != "https://gitlab.com/oauth/authorize_device" {
		t.Errorf("device auth url: got %q", cfg.DeviceAuthURL)
	}
	if cfg.TokenURL != "https://gitlab.com/oauth/token" {
		t.Errorf("token url: got %q", cfg.TokenURL)
	}

	selfHosted := devicegrant.GitLab("https://git.example.com", "client_1")
	if selfHosted.DeviceAuthURL != "https://git.example.com/oauth/authorize_device" {
		t.Errorf("self-hosted device auth url: got %q", selfHosted.DeviceAuthURL)
	}
}

func TestGoogleConfig(t *testing.T) {
	cfg := devicegrant.Google("client_1", "email")
	if cfg.DeviceAuthURL != "https://oauth2.googleapis.com/device/code" {
		t.Errorf("device auth url: got %q", cfg.DeviceAuthURL)
	}
	if cfg.TokenURL != "https://oauth2.googleapis.com/token" {
		t.Errorf("token url: got %q", cfg.TokenURL)
	}
}
