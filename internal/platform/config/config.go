// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the cereal delivery service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Embedded relational store (SQLite file, process working directory by default).
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data.db"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis) — optional. Absent/unreachable degrades Discovery
	// dedup to a no-op rather than failing startup.
	RedisURL string `env:"REDIS_URL"`

	// Object storage (AWS-compatible) holding inbound Patreon emails.
	AWSAccessKey    string `env:"AWS_ACCESS_KEY"`
	AWSSecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEmailBucket  string `env:"AWS_EMAIL_BUCKET"`
	AWSS3Endpoint   string `env:"AWS_S3_ENDPOINT"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`

	// Tracing settings. Loaded from the environment; nothing in the service
	// reads them and no trace exporter is set up.
	HoneycombAPIKey string `env:"HONEYCOMB_API_KEY"`
	HoneycombDataset string `env:"HONEYCOMB_DATASET"`

	// Outbound delivery channels.
	FromEmailAddress   string `env:"CEREAL_FROM_EMAIL_ADDRESS"`
	MailgunAPIKey      string `env:"CEREAL_MAILGUN_API_KEY"`
	MailgunAPIEndpoint string `env:"CEREAL_MAILGUN_API_ENDPOINT"`
	PushoverToken      string `env:"CEREAL_PUSHOVER_TOKEN"`

	// Poll-interval settings, defaulted to spec.md §4's fixed periods. They
	// are loaded but not read: the workers tick on fixed periods (5m for
	// Discovery, 10s for the other three).
	DiscoveryInterval  time.Duration `env:"DISCOVERY_INTERVAL"  envDefault:"5m"`
	HydrationInterval  time.Duration `env:"HYDRATION_INTERVAL"  envDefault:"10s"`
	ConversionInterval time.Duration `env:"CONVERSION_INTERVAL" envDefault:"10s"`
	DeliveryInterval   time.Duration `env:"DELIVERY_INTERVAL"   envDefault:"10s"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
