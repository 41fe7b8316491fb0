package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Twilio sends WhatsApp messages through the Twilio REST API. The tenant
// credential is "AccountSID:AuthToken"; a client is built for every call.
type Twilio struct {
	from   string // e.g. "whatsapp:+14155238886"
	logger *zap.Logger
}

// NewTwilio creates a Twilio transport
func NewTwilio(cfg config.Transport, logger *zap.Logger) *Twilio {
	from := cfg.TwilioFrom
	if from != "" && !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	return &Twilio{from: from, logger: logger}
}

func (t *Twilio) Name() string { return DriverTwilio }

func (t *Twilio) Send(ctx context.Context, credential string, msg Message) (Receipt, error) {
	accountSID, authToken, err := splitTwilioCredential(credential)
	if err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("whatsapp:" + msg.To)
	params.SetBody(msg.Text)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	receipt := Receipt{Reference: msg.Reference}
	if resp.Sid != nil {
		receipt.MessageID = *resp.Sid
	}

	t.logger.Debug("Twilio message created", zap.String("sid", receipt.MessageID))
	return receipt, nil
}

func splitTwilioCredential(credential string) (string, string, error) {
	sid, token, ok := strings.Cut(credential, ":")
	if !ok || sid == "" || token == "" {
		return "", "", ErrInvalidCredential
	}
	return sid, token, nil
}
