package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-responder/core"
)

const envPrefix = "RESPONDER_"

// envConfigLoader maps RESPONDER_* environment variables into the raw
// configuration layer consumed by the cfgx provider. Unset variables leave
// the defaults untouched.
type envConfigLoader struct {
	lookup func(string) (string, bool)
}

func newEnvConfigLoader() envConfigLoader {
	return envConfigLoader{lookup: os.LookupEnv}
}

func (l envConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}

	l.setString(raw, "service_name", "SERVICE_NAME")
	l.setString(raw, "base_url", "BASE_URL")
	l.setString(raw, "access_token", "ACCESS_TOKEN")
	l.setString(raw, "own_app_id", "OWN_APP_ID")
	l.setBool(raw, "auto_comment", "AUTO_COMMENT")
	l.setBool(raw, "auto_reply", "AUTO_REPLY")
	l.setString(raw, "mode", "MODE")
	l.setInt(raw, "reply_ttl_hours", "REPLY_TTL_HOURS")
	l.setString(raw, "cta_url", "CTA_URL")
	l.setString(raw, "sender_actor_id", "SENDER_ACTOR_ID")

	server := map[string]any{}
	l.setString(server, "listen_addr", "LISTEN_ADDR")
	l.setString(server, "webhook_path", "WEBHOOK_PATH")
	l.setString(server, "verify_token", "VERIFY_TOKEN")
	if len(server) > 0 {
		raw["server"] = server
	}

	return raw, nil
}

func (l envConfigLoader) value(suffix string) (string, bool) {
	lookup := l.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(envPrefix + suffix)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func (l envConfigLoader) setString(raw map[string]any, key string, suffix string) {
	if value, ok := l.value(suffix); ok {
		raw[key] = value
	}
}

func (l envConfigLoader) setBool(raw map[string]any, key string, suffix string) {
	value, ok := l.value(suffix)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return
	}
	raw[key] = parsed
}

func (l envConfigLoader) setInt(raw map[string]any, key string, suffix string) {
	value, ok := l.value(suffix)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	raw[key] = parsed
}

var _ core.RawConfigLoader = envConfigLoader{}
