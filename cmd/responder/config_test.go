package main

import (
	"context"
	"testing"

	"github.com/goliatone/go-responder/core"
)

func TestEnvConfigLoaderMapsVariables(t *testing.T) {
	env := map[string]string{
		"RESPONDER_ACCESS_TOKEN":    "token-1",
		"RESPONDER_OWN_APP_ID":      "app-77",
		"RESPONDER_AUTO_REPLY":      "true",
		"RESPONDER_MODE":            "auto",
		"RESPONDER_REPLY_TTL_HOURS": "24",
		"RESPONDER_LISTEN_ADDR":     ":9090",
		"RESPONDER_VERIFY_TOKEN":    "verify-1",
		"RESPONDER_AUTO_COMMENT":    "not-a-bool",
	}
	loader := envConfigLoader{lookup: func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}}

	cfg, err := core.NewCfgxConfigProvider(loader).Load(context.Background(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AccessToken != "token-1" {
		t.Fatalf("expected access token mapping, got %q", cfg.AccessToken)
	}
	if cfg.OwnAppID != "app-77" {
		t.Fatalf("expected own app id mapping, got %q", cfg.OwnAppID)
	}
	if !cfg.AutoReply {
		t.Fatal("expected auto reply enabled")
	}
	if cfg.ReviewMode() {
		t.Fatal("expected auto mode")
	}
	if cfg.ReplyTTLHours != 24 {
		t.Fatalf("expected reply ttl override, got %d", cfg.ReplyTTLHours)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr override, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.VerifyToken != "verify-1" {
		t.Fatalf("expected verify token mapping, got %q", cfg.Server.VerifyToken)
	}
	// Unparseable booleans fall back to the default rather than failing boot.
	if cfg.AutoComment {
		t.Fatal("expected auto comment to stay disabled")
	}
	// Untouched values keep their defaults.
	if cfg.Server.WebhookPath != "/webhooks/conversations" {
		t.Fatalf("expected default webhook path, got %q", cfg.Server.WebhookPath)
	}
}

func TestEnvConfigLoaderEmptyEnvironmentKeepsDefaults(t *testing.T) {
	loader := envConfigLoader{lookup: func(string) (string, bool) { return "", false }}
	cfg, err := core.NewCfgxConfigProvider(loader).Load(context.Background(), core.DefaultConfig())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defaults := core.DefaultConfig()
	if cfg.BaseURL != defaults.BaseURL || cfg.Mode != defaults.Mode {
		t.Fatalf("expected defaults to survive, got %+v", cfg)
	}
}
