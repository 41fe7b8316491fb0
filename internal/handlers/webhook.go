package handlers

import (
	"context"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/Ananth-NQI/clinicbot-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookProcessor runs one provider event through the pipeline
type WebhookProcessor interface {
	Process(ctx context.Context, rawBody []byte, signature models.Signature) (services.WebhookResult, error)
}

// WebhookHandler handles WhatsApp provider webhook requests
type WebhookHandler struct {
	processor WebhookProcessor
	cfg       config.Webhook
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(processor WebhookProcessor, cfg config.Webhook, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleWebhook processes one provider event. Acknowledged events get 200
// {received:true}; rejected ones go to the app error handler.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	signature := models.Signature{
		Token:  c.Get(h.cfg.SignatureHeader),
		Digest: c.Get(h.cfg.DigestHeader),
	}

	// fasthttp reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)

	result, err := h.processor.Process(c.UserContext(), body, signature)
	if err != nil {
		return err
	}

	h.logger.Debug("Webhook acknowledged",
		zap.String("outcome", result.Outcome),
		zap.String("kind", string(result.Kind)),
		zap.String("sessionID", result.SessionID),
	)

	return c.JSON(fiber.Map{"received": true})
}
