package middleware_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/middleware"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "clinic-secret-1"

var body = []byte(`{"event":"inbound-message","data":{"from":"15550001","body":"hi"}}`)

func TestWebhookAuthenticator_Verify(t *testing.T) {
	strict := middleware.NewWebhookAuthenticator(config.Webhook{RequireDigest: true})
	lenient := middleware.NewWebhookAuthenticator(config.Webhook{RequireDigest: false})

	digest := middleware.Sign(body, secret)

	t.Run("valid token and prefixed digest", func(t *testing.T) {
		sig := models.Signature{Token: secret, Digest: digest}
		assert.True(t, strict.Verify(body, sig, secret))
	})

	t.Run("digest without prefix", func(t *testing.T) {
		sig := models.Signature{Token: secret, Digest: strings.TrimPrefix(digest, "sha256=")}
		assert.True(t, strict.Verify(body, sig, secret))
	})

	t.Run("upper case digest", func(t *testing.T) {
		sig := models.Signature{Token: secret, Digest: strings.ToUpper(digest)}
		assert.True(t, strict.Verify(body, sig, secret))
	})

	t.Run("wrong token", func(t *testing.T) {
		sig := models.Signature{Token: "clinic-secret-2", Digest: digest}
		assert.False(t, strict.Verify(body, sig, secret))
	})

	t.Run("empty token", func(t *testing.T) {
		assert.False(t, lenient.Verify(body, models.Signature{}, secret))
	})

	t.Run("digest over different body", func(t *testing.T) {
		sig := models.Signature{Token: secret, Digest: middleware.Sign([]byte(`{"event":"x"}`), secret)}
		assert.False(t, strict.Verify(body, sig, secret))
		assert.False(t, lenient.Verify(body, sig, secret))
	})

	t.Run("digest that is not hex", func(t *testing.T) {
		sig := models.Signature{Token: secret, Digest: "sha256=not-hex"}
		assert.False(t, lenient.Verify(body, sig, secret))
	})

	t.Run("missing digest depends on config", func(t *testing.T) {
		sig := models.Signature{Token: secret}
		assert.False(t, strict.Verify(body, sig, secret))
		assert.True(t, lenient.Verify(body, sig, secret))
	})

	t.Run("empty tenant secret never verifies", func(t *testing.T) {
		sig := models.Signature{Token: "", Digest: middleware.Sign(body, "")}
		assert.False(t, lenient.Verify(body, sig, ""))
	})
}

func TestSign(t *testing.T) {
	first := middleware.Sign(body, secret)
	second := middleware.Sign(body, secret)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "sha256="))
	assert.Len(t, strings.TrimPrefix(first, "sha256="), 64)
	assert.NotEqual(t, first, middleware.Sign(body, "other-secret"))
}

func TestRequireSignature(t *testing.T) {
	cfg := config.Webhook{SignatureHeader: "X-Webhook-Signature", DigestHeader: "X-Webhook-Digest"}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Post("/hook", middleware.RequireSignature(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/hook", strings.NewReader(string(body)))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("header present", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/hook", strings.NewReader(string(body)))
		req.Header.Set("X-Webhook-Signature", secret)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
