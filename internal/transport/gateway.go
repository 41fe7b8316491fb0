package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type gatewayRequest struct {
	To        string `json:"to"`
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
}

type gatewayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MsgID     string `json:"msgId"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Gateway sends through the provider's HTTP messaging API. One resty client
// is shared; the tenant credential travels as a bearer token on each request.
type Gateway struct {
	client   *resty.Client
	sendPath string
	logger   *zap.Logger
}

// NewGateway creates a gateway transport
func NewGateway(cfg config.Transport, logger *zap.Logger) *Gateway {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	sendPath := cfg.SendPath
	if sendPath == "" {
		sendPath = "/api/messages/send"
	}

	return &Gateway{
		client:   client,
		sendPath: sendPath,
		logger:   logger,
	}
}

func (g *Gateway) Name() string { return DriverGateway }

func (g *Gateway) Send(ctx context.Context, credential string, msg Message) (Receipt, error) {
	if credential == "" {
		return Receipt{}, ErrInvalidCredential
	}

	var result gatewayResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetBody(gatewayRequest{To: msg.To, Text: msg.Text, Reference: msg.Reference}).
		SetResult(&result).
		SetError(&result).
		Post(g.sendPath)
	if err != nil {
		return Receipt{}, fmt.Errorf("gateway request failed: %w", err)
	}

	if resp.IsError() || !result.Success {
		g.logger.Warn("Gateway rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", result.Message),
		)
		return Receipt{}, fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode(), result.Message)
	}

	reference := result.Data.Reference
	if reference == "" {
		reference = msg.Reference
	}

	return Receipt{MessageID: result.Data.MsgID, Reference: reference}, nil
}
