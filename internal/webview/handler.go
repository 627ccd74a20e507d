// Package webview is the JavaScript-facing boundary shim. It terminates the
// WebSocket connection from the hosted page, translates named-callback
// method calls into bridge operations, and pushes serialized responses back
// as callback invocation frames. The callback-by-name indirection lives
// entirely here; the bridge itself only sees ResponseSinks.
package webview

import (
	"context"
	"net/http"

	"github.com/snauth/authbridge/internal/bridge"
	"github.com/snauth/authbridge/internal/engine"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// Bridge serves the WebSocket endpoint. Each connection is one
// authentication journey: it gets its own gateway and session, set up when
// the page connects and torn down when it disconnects.
type Bridge struct {
	engine      engine.Engine
	environment string
	logger      *logging.SafeLogger
}

// NewBridge creates the WebSocket bridge for the given engine and
// environment mode.
func NewBridge(eng engine.Engine, environment string, logger *logging.SafeLogger) *Bridge {
	return &Bridge{
		engine:      eng,
		environment: environment,
		logger:      logger,
	}
}

// Handler returns the HTTP handler for the bridge endpoint.
func (b *Bridge) Handler() http.Handler {
	return websocket.Handler(b.serve)
}

func (b *Bridge) serve(ws *websocket.Conn) {
	observability.ActiveConnections.Inc()
	defer observability.ActiveConnections.Dec()

	conn := newHostConn(ws, b.logger)
	defer conn.shutdown()

	gw := bridge.NewGateway(b.engine, b.logger)
	if err := gw.Setup(conn, b.environment); err != nil {
		b.logger.Error("failed to set up bridge session", zap.Error(err))
		return
	}
	// Connection gone means journey over: suppress anything still pending.
	defer gw.CleanupAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.logger.Info("bridge connection established",
		zap.String("remote", ws.Request().RemoteAddr))

	for {
		var frame callFrame
		if err := websocket.JSON.Receive(ws, &frame); err != nil {
			b.logger.Debug("bridge connection closed", zap.Error(err))
			return
		}
		b.dispatch(ctx, gw, conn, frame)
	}
}

// dispatch routes one call frame to the gateway. Responses flow back through
// a sink bound to the frame's callback name.
func (b *Bridge) dispatch(ctx context.Context, gw *bridge.Gateway, conn *hostConn, frame callFrame) {
	if frame.Callback == "" {
		b.logger.Warn("ignoring bridge call without callback name",
			zap.String("method", frame.Method))
		return
	}

	sink := namedSink(conn, frame.Callback)

	switch frame.Method {
	case MethodInitAuth:
		if len(frame.Args) < 1 {
			sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, "initAuth requires an initConfig argument"))
			return
		}
		gw.InitAuth(ctx, models.ParseInitConfig(frame.Args[0]), sink)

	case MethodStartAuth:
		if len(frame.Args) < 1 {
			sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, "startAuth requires a phoneNumber argument"))
			return
		}
		gw.StartAuth(ctx, frame.Args[0], sink)

	case MethodVerifyOtp:
		if len(frame.Args) < 2 {
			sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, "verifyOtp requires phoneNumber and otp arguments"))
			return
		}
		gw.VerifyOtp(ctx, frame.Args[0], frame.Args[1], sink)

	default:
		sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, "unknown bridge method: "+frame.Method))
	}
}

// namedSink resolves a callback name to a ResponseSink delivering through
// the connection's writer.
func namedSink(conn *hostConn, callback string) bridge.ResponseSink {
	return bridge.SinkFunc(func(resp models.AuthResponse) {
		// Delivery failures mean the host surface is gone; the response is
		// dropped, matching the weak-reference contract.
		_ = conn.InvokeCallback(callback, resp.MarshalString())
	})
}
