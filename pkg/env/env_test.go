package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Setenv("PARTNERZ_TEST_VALUE", "  console ")
	assert.Equal(t, "console", Get("PARTNERZ_TEST_VALUE", "json"))

	t.Setenv("PARTNERZ_TEST_VALUE", "   ")
	assert.Equal(t, "json", Get("PARTNERZ_TEST_VALUE", "json"))
}

func TestOneOf(t *testing.T) {
	t.Setenv("LOG_FORMAT", "Console")
	assert.Equal(t, "console", OneOf("LOG_FORMAT", "json", "json", "console"))

	t.Setenv("LOG_FORMAT", "xml")
	assert.Equal(t, "json", OneOf("LOG_FORMAT", "json", "json", "console"))
}
