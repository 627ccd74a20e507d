package bridge

import "github.com/snauth/authbridge/internal/models"

// ResponseSink receives the responses of one bridge call. The WebView layer
// resolves a sink to a named JavaScript callback; native callers pass a
// completion directly. Deliver must not block: deliveries happen while the
// session lock is held.
type ResponseSink interface {
	Deliver(resp models.AuthResponse)
}

// SinkFunc adapts a completion function to a ResponseSink, the native
// (non-WebView) call path.
type SinkFunc func(resp models.AuthResponse)

// Deliver implements ResponseSink.
func (f SinkFunc) Deliver(resp models.AuthResponse) {
	f(resp)
}
