// Package config provides configuration management for hooktail.
package config

// Config is the root configuration structure for hooktail.
type Config struct {
	Environment string        `mapstructure:"environment"`
	API         APIConfig     `mapstructure:"api"`
	Store       StoreConfig   `mapstructure:"store"`
	Webhook     WebhookConfig `mapstructure:"webhook"`
	App         AppConfig     `mapstructure:"app"`
	Tunnel      TunnelConfig  `mapstructure:"tunnel"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds billing API client settings.
type APIConfig struct {
	// Bearer token for the billing API
	Key string `mapstructure:"key"`

	// Base URL of the billing API
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig identifies the store webhooks are registered under.
type StoreConfig struct {
	ID string `mapstructure:"id"`
}

// WebhookConfig holds webhook registration settings.
type WebhookConfig struct {
	// Signing secret; generated when empty
	Secret string `mapstructure:"secret"`

	// URL path segment the local receiver mounts its webhook route under.
	// The registered callback URL is <tunnel-url>/<path>/webhook.
	Path string `mapstructure:"path"`
}

// AppConfig describes the local application the tunnel forwards to.
type AppConfig struct {
	URL string `mapstructure:"url"`
}

// TunnelConfig holds tunnel provider settings.
type TunnelConfig struct {
	// Base URL of the ngrok agent's local inspection API
	InspectionURL string `mapstructure:"inspection_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Log format (json, console)
	Format string `mapstructure:"format"`
}

// IsLocal reports whether the configured environment is a development one.
func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "development"
}
