package models

import "errors"

var (
	// ErrEmailMismatch indicates the submitted email is not the record's client email.
	ErrEmailMismatch = errors.New("email does not match")
	// ErrCodeMismatch indicates the submitted digits are not the stored code.
	ErrCodeMismatch = errors.New("verification code does not match")
	// ErrDeliveryFailed indicates the email dispatch was rejected or unreachable.
	ErrDeliveryFailed = errors.New("email delivery failed")
	// ErrRecordNotFound indicates no record backs the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrPersistenceFailed indicates the record store rejected a write.
	ErrPersistenceFailed = errors.New("persistence failed")

	ErrInvalidRecord      = errors.New("invalid record")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrResendCooldown     = errors.New("resend cooldown active")
	ErrNotVerified        = errors.New("viewer session not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDocumentNotFound   = errors.New("document not found")
)
