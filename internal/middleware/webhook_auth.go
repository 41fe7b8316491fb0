package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/constants"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const digestPrefix = "sha256="

// WebhookAuthenticator verifies provider events against the tenant secret.
// The signature header carries the tenant secret itself; the digest header
// carries HMAC-SHA256(rawBody, secret) in hex.
type WebhookAuthenticator struct {
	requireDigest bool
}

// NewWebhookAuthenticator creates the authenticator from webhook config
func NewWebhookAuthenticator(cfg config.Webhook) *WebhookAuthenticator {
	return &WebhookAuthenticator{requireDigest: cfg.RequireDigest}
}

// Verify returns false when the token is absent or differs from the secret,
// or when a required digest is absent or wrong. A digest that is present is
// always checked.
func (a *WebhookAuthenticator) Verify(rawBody []byte, signature models.Signature, tenantSecret string) bool {
	if signature.Token == "" || tenantSecret == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(signature.Token), []byte(tenantSecret)) != 1 {
		return false
	}

	digest := strings.TrimSpace(signature.Digest)
	if digest == "" {
		return !a.requireDigest
	}

	presented, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(digest), digestPrefix))
	if err != nil {
		return false
	}
	return hmac.Equal(presented, computeDigest(rawBody, tenantSecret))
}

// Sign returns the digest header value the provider is expected to send
func Sign(rawBody []byte, secret string) string {
	return digestPrefix + hex.EncodeToString(computeDigest(rawBody, secret))
}

func computeDigest(rawBody []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return mac.Sum(nil)
}

// RequireSignature rejects webhook requests without the signature header
func RequireSignature(cfg config.Webhook) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(cfg.SignatureHeader) == "" {
			return services.NewServiceError(constants.ErrCodeMissingSignature, services.ErrMissingSignature)
		}
		return c.Next()
	}
}
