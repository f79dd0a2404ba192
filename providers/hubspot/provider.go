// Package hubspot implements the conversation and CRM clients over the
// HubSpot conversations v3 and contacts APIs.
package hubspot

import (
	"strings"
	"time"

	"github.com/goliatone/go-responder/core"
)

const (
	ProviderID     = "hubspot"
	DefaultBaseURL = "https://api.hubapi.com"
)

const defaultRequestTimeout = 15 * time.Second

type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: defaultRequestTimeout,
	}
}

// New builds a client bound to a transport adapter. The access token is
// validated lazily, at the first call that needs it, so a read-only
// deployment can start without credentials.
func New(cfg Config, adapter core.TransportAdapter) *Client {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		timeout:     cfg.Timeout,
		adapter:     adapter,
	}
}
