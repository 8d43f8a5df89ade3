package registry

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSecret returns a fresh 32-character signing secret for webhooks
// that have none configured.
func GenerateSecret() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
