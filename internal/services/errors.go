package services

import "errors"

var (
	ErrTenantNotFound   = errors.New("TENANT_NOT_FOUND")
	ErrInvalidEnvelope  = errors.New("INVALID_ENVELOPE")
	ErrMissingSignature = errors.New("MISSING_SIGNATURE")
	ErrSignatureInvalid = errors.New("SIGNATURE_INVALID")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
