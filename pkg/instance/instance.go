// Package instance names the running process for logs and lock ownership.
package instance

import (
	"os"

	"github.com/angelmondragon/partnerz-backend/pkg/env"
)

// GetID returns the platform-assigned instance identifier, the host name, or "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if id := env.Get("PARTNERZ_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
