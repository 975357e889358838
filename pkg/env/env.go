// Package env reads process settings that must be available before config loads.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// OneOf returns the value of key when it is one of allowed (case-insensitive),
// otherwise fallback.
func OneOf(key, fallback string, allowed ...string) string {
	val := strings.ToLower(Get(key, fallback))
	for _, a := range allowed {
		if val == strings.ToLower(a) {
			return val
		}
	}
	return fallback
}
