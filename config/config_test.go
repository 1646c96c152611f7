package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/scores")
	t.Setenv("SESSION_HMAC_SECRET", "session-secret")
	t.Setenv("TURNSTILE_SECRET", "turnstile-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8787" {
		t.Errorf("port = %q, want 8787", cfg.Port)
	}
	if cfg.SessionWindow != 180*time.Second {
		t.Errorf("session window = %s, want 3m0s", cfg.SessionWindow)
	}
	if cfg.LeaderboardLimit != 10 {
		t.Errorf("leaderboard limit = %d, want 10", cfg.LeaderboardLimit)
	}
	if cfg.TurnstileVerifyURL != "https://challenges.cloudflare.com/turnstile/v0/siteverify" {
		t.Errorf("verify url = %q", cfg.TurnstileVerifyURL)
	}
	if cfg.AllowedOrigin != "https://words.socolagames.com" {
		t.Errorf("allowed origin = %q", cfg.AllowedOrigin)
	}
	if cfg.SnapshotEnabled() {
		t.Error("snapshot export should be disabled without a bucket")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_HMAC_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty SESSION_HMAC_SECRET")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero window", map[string]string{"SESSION_WINDOW": "0s"}, "SESSION_WINDOW"},
		{"zero limit", map[string]string{"LEADERBOARD_LIMIT": "0"}, "LEADERBOARD_LIMIT"},
		{"bucket without credentials", map[string]string{"R2_BUCKET_NAME": "boards"}, "R2_BUCKET_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadSnapshotConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("R2_BUCKET_NAME", "boards")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_ACCESS_KEY_SECRET", "secret")
	t.Setenv("SNAPSHOT_INTERVAL", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.SnapshotEnabled() {
		t.Fatal("snapshot export should be enabled")
	}
	if cfg.SnapshotInterval != time.Minute {
		t.Errorf("interval = %s, want 1m0s", cfg.SnapshotInterval)
	}
}
