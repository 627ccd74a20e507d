// Package engine defines the asynchronous interface to the auth engine, the
// external collaborator that owns all authentication state machines, network
// calls, and token issuance. The bridge treats it as a black box: one
// request in, an ordered stream of responses out.
package engine

import (
	"context"

	"github.com/snauth/authbridge/internal/models"
)

// Engine is the pluggable auth engine collaborator. Every method returns a
// receive-only channel carrying the engine's responses in production order;
// the channel is closed after the terminal response. Implementations must
// map their own transport failures to FAILURE responses rather than
// returning errors, so every outcome reaches the caller through the stream.
type Engine interface {
	// Init prepares an authentication journey for the given app identity.
	// The stream carries exactly one terminal response.
	Init(ctx context.Context, cfg models.InitConfig) <-chan models.AuthResponse

	// StartAuth begins a phone authentication attempt. The stream may carry
	// several intermediate responses (INITIATE, DELIVERY_STATUS, VERIFY,
	// OTP_AUTO_READ, FALLBACK_TRIGGERED) before the terminal one, or a
	// single terminal SUCCESS when silent auth completes directly.
	StartAuth(ctx context.Context, req models.AuthRequest) <-chan models.AuthResponse

	// VerifyOtp checks a one-time password. The stream carries exactly one
	// terminal response.
	VerifyOtp(ctx context.Context, attempt models.OtpAttempt) <-chan models.AuthResponse
}
