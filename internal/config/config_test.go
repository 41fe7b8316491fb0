package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("defaults fill unset keys", func(t *testing.T) {
		path := writeConfig(t, `
database:
  driver: memory
seed:
  - clinic_name: Smile Dental
    webhook_secret: s1
    api_credential: k1
    working_hours:
      monday: {open: "09:00", close: "17:00"}
    services:
      - {nameEn: Cleaning, price: 50, duration: 30}
`)

		cfg, err := config.LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.API.Port)
		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, "gateway", cfg.Transport.Driver)
		assert.Equal(t, 15*time.Second, cfg.Transport.Timeout)
		assert.Equal(t, "X-Webhook-Signature", cfg.Webhook.SignatureHeader)
		assert.True(t, cfg.Webhook.RequireDigest)
		assert.Equal(t, "USD", cfg.Responder.DefaultCurrency)
		assert.NotEmpty(t, cfg.Responder.ArabicTriggers["greeting"])

		require.Len(t, cfg.Seed, 1)
		assert.Equal(t, "Smile Dental", cfg.Seed[0].ClinicName)
		assert.Equal(t, "17:00", cfg.Seed[0].WorkingHours["monday"].Close)
		require.Len(t, cfg.Seed[0].Services, 1)
		assert.Equal(t, "Cleaning", cfg.Seed[0].Services[0].NameEn)
		assert.Equal(t, 30, cfg.Seed[0].Services[0].Duration)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "database:\n  driver: memory\n")
		t.Setenv("API_PORT", "9090")
		t.Setenv("TRANSPORT_DRIVER", "twilio")
		t.Setenv("TRANSPORT_TWILIO_FROM", "+15550000000")

		cfg, err := config.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.API.Port)
		assert.Equal(t, "twilio", cfg.Transport.Driver)
		assert.Equal(t, "+15550000000", cfg.Transport.TwilioFrom)
	})

	t.Run("invalid driver is rejected", func(t *testing.T) {
		path := writeConfig(t, "database:\n  driver: sqlite\n")

		_, err := config.LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("twilio needs a sender", func(t *testing.T) {
		path := writeConfig(t, "database:\n  driver: memory\ntransport:\n  driver: twilio\n")

		_, err := config.LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("seed tenant needs a secret", func(t *testing.T) {
		path := writeConfig(t, `
database:
  driver: memory
seed:
  - clinic_name: Smile Dental
    api_credential: k1
`)

		_, err := config.LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}
