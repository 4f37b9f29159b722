package s3archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	env.Env = values
	t.Cleanup(func() { env.Env = nil })
}

func TestLoadConfig_Disabled(t *testing.T) {
	withEnv(t, map[string]string{"S3_RECEIPTS_ENABLED": "false"})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
}

func TestLoadConfig_EnabledRequiresCredentials(t *testing.T) {
	withEnv(t, map[string]string{"S3_RECEIPTS_ENABLED": "true", "S3_BUCKET_NAME": "receipts"})

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "S3_ACCESS_KEY_ID")
}

func TestLoadConfig_Enabled(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_RECEIPTS_ENABLED":  "true",
		"S3_ACCESS_KEY_ID":     "key",
		"S3_SECRET_ACCESS_KEY": "secret",
		"S3_BUCKET_NAME":       "receipts",
		"S3_ENDPOINT_URL":      "http://minio:9000",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "http://minio:9000", cfg.EndpointURL)
}

func TestReceiptObjectKey(t *testing.T) {
	at := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "receipts/2025/03/order-1.html", ReceiptObjectKey("order-1", at))
}
