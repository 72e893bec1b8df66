package interfaces

import "context"

// CredentialVerifier checks the one-time credential presented when signing a cheque.
type CredentialVerifier interface {
	Verify(ctx context.Context, chequeID string, otp string) bool
}
