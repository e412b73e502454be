package models

// AuthStatus is the outcome reported by signup and verify.
type AuthStatus string

const (
	AuthStatusSuccess     AuthStatus = "success"
	AuthStatusPending     AuthStatus = "pending"
	AuthStatusConflict    AuthStatus = "conflict"
	AuthStatusInvalidCode AuthStatus = "invalid_code"
	AuthStatusExpiredCode AuthStatus = "expired_code"
)

// VerificationStatus mirrors the provider's account confirmation state.
type VerificationStatus string

const (
	VerificationConfirmed   VerificationStatus = "CONFIRMED"
	VerificationUnconfirmed VerificationStatus = "UNCONFIRMED"
)
