package hcaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_DisabledAcceptsEverything(t *testing.T) {
	v := &Verifier{}
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), ""))
}

func TestVerify_EmptyToken(t *testing.T) {
	v := &Verifier{Secret: "s"}
	assert.ErrorContains(t, v.Verify(context.Background(), ""), "empty")
}

func TestVerify_RemoteAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("response") == "good" && r.PostForm.Get("secret") == "s" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := &Verifier{Secret: "s", VerifyURL: srv.URL, Client: srv.Client()}
	assert.NoError(t, v.Verify(context.Background(), "good"))
	assert.ErrorContains(t, v.Verify(context.Background(), "bad"), "invalid-input-response")
}
