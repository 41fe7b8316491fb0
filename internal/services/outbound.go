package services

import (
	"context"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/transport"
	"go.uber.org/zap"
)

// Outbound hands composed replies to the messaging transport
type Outbound struct {
	transport transport.Transport
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewOutbound creates a new outbound dispatcher
func NewOutbound(t transport.Transport, m *metrics.Metrics, logger *zap.Logger) *Outbound {
	return &Outbound{
		transport: t,
		metrics:   m,
		logger:    logger,
	}
}

// Send normalizes the recipient and sends text with the tenant credential.
// reference may be empty. Transport errors are returned to the caller.
func (o *Outbound) Send(ctx context.Context, credential, recipient, text, reference string) (transport.Receipt, error) {
	to, err := transport.NormalizeRecipient(recipient)
	if err != nil {
		return transport.Receipt{}, err
	}

	start := time.Now()
	receipt, err := o.transport.Send(ctx, credential, transport.Message{
		To:        to,
		Text:      text,
		Reference: reference,
	})
	if err != nil {
		o.metrics.RecordReply(o.transport.Name(), "failed", time.Since(start))
		return transport.Receipt{}, err
	}

	o.metrics.RecordReply(o.transport.Name(), "sent", time.Since(start))
	o.logger.Debug("Reply sent",
		zap.String("to", to),
		zap.String("messageID", receipt.MessageID),
		zap.String("driver", o.transport.Name()),
	)
	return receipt, nil
}

// Driver names the transport in use
func (o *Outbound) Driver() string {
	return o.transport.Name()
}
