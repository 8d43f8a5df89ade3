package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != DefaultEnvironment {
		t.Errorf("expected environment %s, got %s", DefaultEnvironment, cfg.Environment)
	}

	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("expected api base url %s, got %s", DefaultAPIBaseURL, cfg.API.BaseURL)
	}

	if cfg.Webhook.Path != DefaultWebhookPath {
		t.Errorf("expected webhook path %s, got %s", DefaultWebhookPath, cfg.Webhook.Path)
	}

	if cfg.Tunnel.InspectionURL != DefaultInspectionURL {
		t.Errorf("expected inspection url %s, got %s", DefaultInspectionURL, cfg.Tunnel.InspectionURL)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "invalid"

	err := Validate(cfg)
	if err == nil {
		t.Error("expected validation error for invalid log level")
	}
}

func TestValidate_WebhookPathWithSlash(t *testing.T) {
	cfg := Default()
	cfg.Webhook.Path = "billing/webhooks"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for webhook path with slash")
	}

	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	found := false
	for _, e := range errs {
		if e.Field == "webhook.path" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected error for webhook.path field")
	}
}

func TestValidateForListen_MissingCredentials(t *testing.T) {
	cfg := Default()

	err := ValidateForListen(cfg)
	if err == nil {
		t.Fatal("expected validation error for missing credentials")
	}

	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	if !fields["api.key"] {
		t.Error("expected error for api.key field")
	}
	if !fields["store.id"] {
		t.Error("expected error for store.id field")
	}
}

func TestValidateForListen_Complete(t *testing.T) {
	cfg := Default()
	cfg.API.Key = "lsq_test_key"
	cfg.Store.ID = "12345"

	if err := ValidateForListen(cfg); err != nil {
		t.Errorf("expected valid listen config, got error: %v", err)
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"local", true},
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := &Config{Environment: tt.env}
		if got := cfg.IsLocal(); got != tt.want {
			t.Errorf("IsLocal() with env %q = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hooktail.yaml")

	content := `
environment: development
api:
  key: "lsq_test_key"
store:
  id: "98765"
webhook:
  path: "payments"
logging:
  level: "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("expected environment development, got %s", cfg.Environment)
	}

	if cfg.API.Key != "lsq_test_key" {
		t.Errorf("expected api key lsq_test_key, got %s", cfg.API.Key)
	}

	if cfg.Store.ID != "98765" {
		t.Errorf("expected store id 98765, got %s", cfg.Store.ID)
	}

	if cfg.Webhook.Path != "payments" {
		t.Errorf("expected webhook path payments, got %s", cfg.Webhook.Path)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Untouched fields keep their defaults
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("expected default api base url, got %s", cfg.API.BaseURL)
	}
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("HOOKTAIL_API_KEY", "env-key")
	t.Setenv("HOOKTAIL_STORE_ID", "424242")

	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.Key != "env-key" {
		t.Errorf("expected api key env-key from env, got %s", cfg.API.Key)
	}

	if cfg.Store.ID != "424242" {
		t.Errorf("expected store id 424242 from env, got %s", cfg.Store.ID)
	}
}
