// Package otp provides credential verifiers for cheque signing.
package otp

import (
	"context"
	"crypto/subtle"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
)

// DefaultCode is the code accepted when no other is configured.
const DefaultCode = "123456"

// StaticVerifier accepts a single fixed code for every cheque.
// It stands in for a real one-time-password service.
type StaticVerifier struct {
	code string
}

// NewStaticVerifier returns a verifier accepting code, or DefaultCode when code is empty.
func NewStaticVerifier(code string) *StaticVerifier {
	if code == "" {
		code = DefaultCode
	}
	return &StaticVerifier{code: code}
}

func (v *StaticVerifier) Verify(_ context.Context, _ string, otp string) bool {
	return subtle.ConstantTimeCompare([]byte(otp), []byte(v.code)) == 1
}

var _ interfaces.CredentialVerifier = (*StaticVerifier)(nil)
