package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackURL(t *testing.T) {
	t.Setenv("PUBLIC_DOMAIN", "https://loja.example.pt/")
	assert.Equal(t, "https://loja.example.pt/auth/google/callback", CallbackURL("google"))

	t.Setenv("PUBLIC_DOMAIN", "")
	t.Setenv("APP_PORT", "8080")
	assert.Equal(t, "http://localhost:8080/auth/google/callback", CallbackURL("google"))
}

func TestSetupWithoutKey(t *testing.T) {
	t.Setenv("GOOGLE_KEY", "")
	assert.False(t, Setup())
}
