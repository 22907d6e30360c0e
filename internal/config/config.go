// Package config loads and persists devicegrant CLI configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/waabox/devicegrant"
)

// Config holds all devicegrant CLI configuration. Values come from a TOML
// file; DEVICEGRANT_* environment variables override them.
//
// Either set Service to a known preset (github, gitlab, google) or leave it
// empty and provide the endpoints directly.
type Config struct {
	Service       string   `toml:"service" envconfig:"DEVICEGRANT_SERVICE"`
	ClientID      string   `toml:"client_id" envconfig:"DEVICEGRANT_CLIENT_ID"`
	BaseURL       string   `toml:"base_url" envconfig:"DEVICEGRANT_BASE_URL"`
	DeviceAuthURL string   `toml:"device_auth_url" envconfig:"DEVICEGRANT_DEVICE_AUTH_URL"`
	TokenURL      string   `toml:"token_url" envconfig:"DEVICEGRANT_TOKEN_URL"`
	Scopes        []string `toml:"scopes" envconfig:"DEVICEGRANT_SCOPES"`
	Token         string   `toml:"token" envconfig:"DEVICEGRANT_TOKEN"`
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values.
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the default path for the devicegrant config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return home + "/.config/devicegrant/config.toml"
}

// Save writes cfg to the given TOML file path, creating parent directories as
// needed. Existing file contents are overwritten. Permissions on the written
// file are 0600 since it may hold an access token.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}

// FlowConfig maps the CLI configuration onto a devicegrant.Config, resolving
// the service preset when one is named.
func (c Config) FlowConfig() (devicegrant.Config, error) {
	if c.ClientID == "" {
		return devicegrant.Config{}, fmt.Errorf("client_id is not set")
	}
	switch strings.ToLower(c.Service) {
	case "github":
		if c.BaseURL != "" {
			return devicegrant.GitHubEnterprise(c.BaseURL, c.ClientID, c.Scopes...), nil
		}
		return devicegrant.GitHub(c.ClientID, c.Scopes...), nil
	case "gitlab":
		return devicegrant.GitLab(c.BaseURL, c.ClientID, c.Scopes...), nil
	case "google":
		return devicegrant.Google(c.ClientID, c.Scopes...), nil
	case "":
		return devicegrant.Config{
			ClientID:      c.ClientID,
			DeviceAuthURL: c.DeviceAuthURL,
			TokenURL:      c.TokenURL,
			Scopes:        c.Scopes,
		}, nil
	default:
		return devicegrant.Config{}, fmt.Errorf("unknown service %q (supported: github, gitlab, google)", c.Service)
	}
}
