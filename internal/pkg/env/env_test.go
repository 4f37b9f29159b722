package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv_MapTakesPrecedence(t *testing.T) {
	Env = map[string]string{"STORE_TEST_KEY": "from-map"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("STORE_TEST_KEY", "from-os")

	assert.Equal(t, "from-map", GetEnv("STORE_TEST_KEY", "def"))
}

func TestGetEnv_FallsBack(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("STORE_TEST_OS", "from-os")

	assert.Equal(t, "from-os", GetEnv("STORE_TEST_OS", "def"))
	assert.Equal(t, "def", GetEnv("STORE_TEST_MISSING", "def"))
}

func TestGetEnvIntAndBool(t *testing.T) {
	Env = map[string]string{
		"WORKERS": "4",
		"BROKEN":  "four",
		"ENABLED": "Yes",
		"OFF":     "0",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 4, GetEnvInt("WORKERS", 1))
	assert.Equal(t, 1, GetEnvInt("BROKEN", 1))
	assert.Equal(t, 7, GetEnvInt("MISSING_INT", 7))
	assert.True(t, GetEnvBool("ENABLED", false))
	assert.False(t, GetEnvBool("OFF", true))
	assert.True(t, GetEnvBool("MISSING_BOOL", true))
}
