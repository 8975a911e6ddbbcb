// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It uses 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, with defaults for everything except the two connection strings.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The abuse policy (issuance and recovery limits, lockout) defaults to the
production values and is only overridden for load tests and staging.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/certly/internal/ratelimit"
)

// # Configuration Schema

// Config holds all runtime configuration for the certificate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// EmailQueueKey is the Redis list consumed by the mail worker.
	EmailQueueKey string `env:"EMAIL_QUEUE_KEY" envDefault:"email_jobs"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"4096"`

	// Abuse policy
	Policy Policy
}

// Policy holds the rate and lockout thresholds.
type Policy struct {
	CodeIPLimit     int64         `env:"CODE_IP_LIMIT"     envDefault:"5"`
	CodeIPWindow    time.Duration `env:"CODE_IP_WINDOW"    envDefault:"10m"`
	CodeEmailLimit  int64         `env:"CODE_EMAIL_LIMIT"  envDefault:"1"`
	CodeEmailWindow time.Duration `env:"CODE_EMAIL_WINDOW" envDefault:"3m"`

	ForgotIPLimit     int64         `env:"FORGOT_IP_LIMIT"     envDefault:"3"`
	ForgotIPWindow    time.Duration `env:"FORGOT_IP_WINDOW"    envDefault:"10m"`
	ForgotEmailLimit  int64         `env:"FORGOT_EMAIL_LIMIT"  envDefault:"1"`
	ForgotEmailWindow time.Duration `env:"FORGOT_EMAIL_WINDOW" envDefault:"48h"`

	MaxTries        int64         `env:"CODE_MAX_TRIES"        envDefault:"5"`
	LockoutDuration time.Duration `env:"CODE_LOCKOUT_DURATION" envDefault:"15m"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if DATABASE_URL or REDIS_URL is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// DefaultPolicy returns the production thresholds without reading the environment.
func DefaultPolicy() Policy {
	policy, _ := env.ParseAsWithOptions[Policy](env.Options{Environment: map[string]string{}})
	return policy
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// # Rate Rules

// CodeIPRule limits code issuance per client address.
func (p Policy) CodeIPRule() ratelimit.Rule {
	return ratelimit.Rule{Realm: ratelimit.RealmCode, Limit: p.CodeIPLimit, Window: p.CodeIPWindow}
}

// CodeEmailRule limits code issuance per email address.
func (p Policy) CodeEmailRule() ratelimit.Rule {
	return ratelimit.Rule{Realm: ratelimit.RealmCode, Limit: p.CodeEmailLimit, Window: p.CodeEmailWindow}
}

// ForgotIPRule limits recovery emails per client address.
func (p Policy) ForgotIPRule() ratelimit.Rule {
	return ratelimit.Rule{Realm: ratelimit.RealmForgot, Limit: p.ForgotIPLimit, Window: p.ForgotIPWindow}
}

// ForgotEmailRule limits recovery emails per email address.
func (p Policy) ForgotEmailRule() ratelimit.Rule {
	return ratelimit.Rule{Realm: ratelimit.RealmForgot, Limit: p.ForgotEmailLimit, Window: p.ForgotEmailWindow}
}
