// config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the service reads from the environment at startup.
// Secrets are handed to components explicitly; nothing else touches os.Getenv.
type Config struct {
	Port        string `env:"PORT" envDefault:"8787"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	SessionSecret string        `env:"SESSION_HMAC_SECRET,required,notEmpty"`
	SessionWindow time.Duration `env:"SESSION_WINDOW" envDefault:"180s"`

	TurnstileSecret    string        `env:"TURNSTILE_SECRET,required,notEmpty"`
	TurnstileVerifyURL string        `env:"TURNSTILE_VERIFY_URL" envDefault:"https://challenges.cloudflare.com/turnstile/v0/siteverify"`
	HTTPClientTimeout  time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`

	AllowedOrigin    string `env:"ALLOWED_ORIGIN" envDefault:"https://words.socolagames.com"`
	LeaderboardLimit int    `env:"LEADERBOARD_LIMIT" envDefault:"10"`
	BodyLimit        int    `env:"BODY_LIMIT" envDefault:"16384"`

	// R2 snapshot export; disabled unless a bucket is set
	CloudflareAccountID string        `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string        `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string        `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket            string        `env:"R2_BUCKET_NAME"`
	SnapshotPrefix      string        `env:"SNAPSHOT_PREFIX" envDefault:"leaderboards"`
	SnapshotInterval    time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5m"`
}

// Load parses the environment into a Config and rejects values the service cannot run with.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionWindow < time.Millisecond {
		return fmt.Errorf("SESSION_WINDOW must be at least 1ms, got %s", c.SessionWindow)
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT must be positive, got %d", c.BodyLimit)
	}
	if c.SnapshotEnabled() {
		if c.CloudflareAccountID == "" || c.R2AccessKeyID == "" || c.R2AccessKeySecret == "" {
			return fmt.Errorf("R2_BUCKET_NAME is set but CLOUDFLARE_ACCOUNT_ID, R2_ACCESS_KEY_ID or R2_ACCESS_KEY_SECRET is missing")
		}
		if c.SnapshotInterval <= 0 {
			return fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", c.SnapshotInterval)
		}
	}
	return nil
}

// SnapshotEnabled reports whether leaderboard snapshots should be exported to R2.
func (c Config) SnapshotEnabled() bool {
	return c.R2Bucket != ""
}
