package models

// DeliveryStatus of a message record
type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusPlayed    DeliveryStatus = "played"
	StatusFailed    DeliveryStatus = "failed"
	StatusError     DeliveryStatus = "error"
	StatusReceived  DeliveryStatus = "received"
	StatusUnknown   DeliveryStatus = "unknown"
)

// providerStatusCodes is the provider's numeric acknowledgement table
var providerStatusCodes = map[int]DeliveryStatus{
	0: StatusError,
	1: StatusPending,
	2: StatusSent,
	3: StatusDelivered,
	4: StatusRead,
	5: StatusPlayed,
}

// StatusFromCode maps a provider status code; unmapped codes become unknown
func StatusFromCode(code int) DeliveryStatus {
	if s, ok := providerStatusCodes[code]; ok {
		return s
	}
	return StatusUnknown
}

// outbound progression; unknown sits beside sent since it carries no position
var statusRank = map[DeliveryStatus]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusUnknown:   1,
	StatusDelivered: 2,
	StatusRead:      3,
	StatusPlayed:    4,
}

var outboundStatuses = []DeliveryStatus{
	StatusPending, StatusSent, StatusUnknown, StatusDelivered,
	StatusRead, StatusPlayed, StatusFailed, StatusError,
}

// IsFailure reports whether s is one of the failure states
func (s DeliveryStatus) IsFailure() bool {
	return s == StatusFailed || s == StatusError
}

// CanAdvanceTo reports whether an outbound record in status s may move to next.
// Re-applying the current status is not an advance.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	if s == next || s.IsFailure() {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	if next.IsFailure() {
		return from <= statusRank[StatusSent]
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Predecessors lists the statuses an outbound record may leave to reach s
func (s DeliveryStatus) Predecessors() []DeliveryStatus {
	var from []DeliveryStatus
	for _, candidate := range outboundStatuses {
		if candidate.CanAdvanceTo(s) {
			from = append(from, candidate)
		}
	}
	return from
}
