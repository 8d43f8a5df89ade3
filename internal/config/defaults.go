package config

// Default configuration values.
const (
	DefaultEnvironment = "local"

	// Billing API defaults.
	DefaultAPIBaseURL = "https://api.lemonsqueezy.com/v1"

	// Webhook defaults.
	DefaultWebhookPath = "billing"

	// App defaults.
	DefaultAppURL = "http://localhost:8000"

	// Tunnel defaults.
	DefaultInspectionURL = "http://127.0.0.1:4040/api"

	// Logging defaults.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Default returns a Config with sensible defaults. The API key and store id
// have no defaults and must come from the config file or environment.
func Default() *Config {
	return &Config{
		Environment: DefaultEnvironment,
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
		},
		Webhook: WebhookConfig{
			Path: DefaultWebhookPath,
		},
		App: AppConfig{
			URL: DefaultAppURL,
		},
		Tunnel: TunnelConfig{
			InspectionURL: DefaultInspectionURL,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
