package core

import (
	"testing"
	"time"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "yolo"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown mode to fail validation")
	}
}

func TestConfigReplyTTL_DefaultAndFloor(t *testing.T) {
	cases := []struct {
		name  string
		hours int
		want  time.Duration
	}{
		{"zero defaults", 0, 12 * time.Hour},
		{"explicit", 4, 4 * time.Hour},
		{"floor", 0, 12 * time.Hour},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.ReplyTTLHours = tc.hours
		if got := cfg.ReplyTTL(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestConfigReviewMode_DefaultsToReview(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.ReviewMode() {
		t.Fatalf("expected default mode to review")
	}
	cfg.Mode = ModeAuto
	if cfg.ReviewMode() {
		t.Fatalf("expected auto mode not to review")
	}
	cfg.Mode = ""
	if !cfg.ReviewMode() {
		t.Fatalf("expected empty mode to review")
	}
}

func TestDefaultConfig_WriteInert(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AutoComment || cfg.AutoReply {
		t.Fatalf("expected write toggles off by default")
	}
	if cfg.AccessToken != "" {
		t.Fatalf("expected no credential by default")
	}
}
