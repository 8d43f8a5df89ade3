package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate checks structural configuration. Run-specific requirements (API
// key, store id) are checked by ValidateForListen so that loading a config
// without credentials is still possible.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Environment == "" {
		errs = append(errs, ValidationError{
			Field:   "environment",
			Message: "required",
		})
	}

	if cfg.API.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "required",
		})
	}

	if cfg.Webhook.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "webhook.path",
			Message: "required",
		})
	}

	if strings.Contains(cfg.Webhook.Path, "/") {
		errs = append(errs, ValidationError{
			Field:   "webhook.path",
			Message: "must be a single path segment without slashes",
		})
	}

	if cfg.App.URL == "" {
		errs = append(errs, ValidationError{
			Field:   "app.url",
			Message: "required",
		})
	}

	if cfg.Tunnel.InspectionURL == "" {
		errs = append(errs, ValidationError{
			Field:   "tunnel.inspection_url",
			Message: "required",
		})
	}

	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateForListen checks the fields a listen or cleanup run cannot proceed
// without. Each missing field gets its own descriptive error.
func ValidateForListen(cfg *Config) error {
	var errs ValidationErrors

	if cfg.API.Key == "" {
		errs = append(errs, ValidationError{
			Field:   "api.key",
			Message: "required: set it in hooktail.yaml or HOOKTAIL_API_KEY",
		})
	}

	if cfg.Store.ID == "" {
		errs = append(errs, ValidationError{
			Field:   "store.id",
			Message: "required: set it in hooktail.yaml or HOOKTAIL_STORE_ID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[cfg.Level] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be one of: trace, debug, info, warn, error, fatal, panic",
		})
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'console'",
		})
	}

	return errs
}
