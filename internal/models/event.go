package models

import (
	"encoding/json"
	"math"
	"time"
)

// EventKind is the normalized provider event type
type EventKind string

const (
	EventInboundMessage EventKind = "inbound-message"
	EventOutboundSent   EventKind = "outbound-sent"
	EventStatusUpdate   EventKind = "status-update"
)

// provider wire names accepted for each kind
var eventAliases = map[string]EventKind{
	string(EventInboundMessage): EventInboundMessage,
	string(EventOutboundSent):   EventOutboundSent,
	string(EventStatusUpdate):   EventStatusUpdate,
	"messages.upsert":           EventInboundMessage,
	"messages.received":         EventInboundMessage,
	"message.sent":              EventOutboundSent,
	"messages.update":           EventStatusUpdate,
	"message-receipt.update":    EventStatusUpdate,
}

// ParseEventKind resolves a wire event name; ok is false for unknown kinds
func ParseEventKind(name string) (EventKind, bool) {
	kind, ok := eventAliases[name]
	return kind, ok
}

// WebhookEnvelope is the JSON body posted by the provider
type WebhookEnvelope struct {
	Event     string          `json:"event" validate:"required"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

// Time converts the envelope timestamp (seconds or milliseconds) to a time
func (e WebhookEnvelope) Time() time.Time {
	return UnixTime(e.Timestamp)
}

// UnixTime accepts provider timestamps in seconds or milliseconds, with or
// without a fractional part
func UnixTime(ts float64) time.Time {
	switch {
	case ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0):
		return time.Time{}
	case ts > 1_000_000_000_000:
		return time.UnixMilli(int64(ts))
	default:
		sec, frac := math.Modf(ts)
		return time.Unix(int64(sec), int64(frac*1e9))
	}
}

// Signature carries the webhook authentication headers of one request
type Signature struct {
	Token  string
	Digest string
}

// InboundMessageData is the payload of an inbound-message event
type InboundMessageData struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Body      string  `json:"body"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	FromMe    bool    `json:"fromMe"`
}

// Content returns the message text, whichever field the provider used
func (d InboundMessageData) Content() string {
	if d.Body != "" {
		return d.Body
	}
	return d.Text
}

// OutboundSentData is the payload of an outbound-sent event
type OutboundSentData struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
	Success   *bool  `json:"success"`
}

// Content returns the sent text
func (d OutboundSentData) Content() string {
	if d.Body != "" {
		return d.Body
	}
	return d.Text
}

// Succeeded treats a missing success flag as a successful send
func (d OutboundSentData) Succeeded() bool {
	return d.Success == nil || *d.Success
}

// StatusUpdateData is the payload of a status-update event
type StatusUpdateData struct {
	ID        string      `json:"id"`
	Reference string      `json:"reference"`
	Status    json.Number `json:"status"`
}

// unmappedStatusCode is outside the provider table and maps to unknown
const unmappedStatusCode = -1

// StatusCode returns the numeric status; 3.0 counts as 3, while fractions
// and non-numbers map to an unknown code
func (d StatusUpdateData) StatusCode() int {
	f, err := d.Status.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return unmappedStatusCode
	}
	return int(f)
}
