package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	ModeReview = "review"
	ModeAuto   = "auto"
)

const (
	defaultReplyTTLHours = 12
	minReplyTTLHours     = 1
)

type ServerConfig struct {
	ListenAddr  string `koanf:"listen_addr" mapstructure:"listen_addr"`
	WebhookPath string `koanf:"webhook_path" mapstructure:"webhook_path"`
	VerifyToken string `koanf:"verify_token" mapstructure:"verify_token"`
}

// Config is the responder's full configuration surface. Every write-back
// toggle defaults to off: the system is write-inert unless explicitly
// enabled.
type Config struct {
	ServiceName   string       `koanf:"service_name" mapstructure:"service_name"`
	BaseURL       string       `koanf:"base_url" mapstructure:"base_url"`
	AccessToken   string       `koanf:"access_token" mapstructure:"access_token"`
	OwnAppID      string       `koanf:"own_app_id" mapstructure:"own_app_id"`
	AutoComment   bool         `koanf:"auto_comment" mapstructure:"auto_comment"`
	AutoReply     bool         `koanf:"auto_reply" mapstructure:"auto_reply"`
	Mode          string       `koanf:"mode" mapstructure:"mode"`
	ReplyTTLHours int          `koanf:"reply_ttl_hours" mapstructure:"reply_ttl_hours"`
	CTAURL        string       `koanf:"cta_url" mapstructure:"cta_url"`
	SenderActorID string       `koanf:"sender_actor_id" mapstructure:"sender_actor_id"`
	Server        ServerConfig `koanf:"server" mapstructure:"server"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:   "responder",
		BaseURL:       "https://api.hubapi.com",
		Mode:          ModeReview,
		ReplyTTLHours: defaultReplyTTLHours,
		Server: ServerConfig{
			ListenAddr:  ":8080",
			WebhookPath: "/webhooks/conversations",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "", ModeReview, ModeAuto:
	default:
		return fmt.Errorf("core: mode must be %q or %q", ModeReview, ModeAuto)
	}
	if c.ReplyTTLHours < 0 {
		return fmt.Errorf("core: reply_ttl_hours must not be negative")
	}
	return nil
}

// ReviewMode reports whether sends are drafted as internal comments instead
// of going out. Anything that is not explicitly "auto" reviews.
func (c Config) ReviewMode() bool {
	return strings.ToLower(strings.TrimSpace(c.Mode)) != ModeAuto
}

// ReplyTTL returns the replied-threads window, defaulting absent values and
// clamping to the one hour floor.
func (c Config) ReplyTTL() time.Duration {
	hours := c.ReplyTTLHours
	if hours == 0 {
		hours = defaultReplyTTLHours
	}
	if hours < minReplyTTLHours {
		hours = minReplyTTLHours
	}
	return time.Duration(hours) * time.Hour
}
