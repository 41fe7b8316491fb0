package constants

const (
	ErrCodeInvalidEnvelope  = "INVALID_ENVELOPE"
	ErrCodeMissingSignature = "MISSING_SIGNATURE"
	ErrCodeSignatureInvalid = "SIGNATURE_INVALID"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

const (
	ErrMsgInvalidEnvelope  = "webhook body must be a JSON envelope with an event field"
	ErrMsgMissingSignature = "missing webhook signature header"
	ErrMsgSignatureInvalid = "webhook signature verification failed"
	ErrMsgInternalError    = "Internal server error"
)

var errorMessages = map[string]string{
	ErrCodeInvalidEnvelope:  ErrMsgInvalidEnvelope,
	ErrCodeMissingSignature: ErrMsgMissingSignature,
	ErrCodeSignatureInvalid: ErrMsgSignatureInvalid,
	ErrCodeInternalError:    ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidEnvelope, ErrCodeMissingSignature:
		return 400
	case ErrCodeSignatureInvalid:
		return 403
	default:
		return 500
	}
}
