// Package bridge implements the authentication bridge contract: validation,
// forwarding to the auth engine, and epoch-guarded delivery of its
// asynchronous responses. It performs no network I/O and no persistence of
// its own; phone numbers, OTPs, and tokens pass through without being
// stored.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/snauth/authbridge/internal/config"
	"github.com/snauth/authbridge/internal/engine"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"github.com/snauth/authbridge/internal/utils"
	"go.uber.org/zap"
)

// Validation and local failure messages surfaced with error code 1001/1002.
const (
	msgInitConfigRequired = "appId and requestId are required"
	msgInvalidPhone       = "Invalid phone number format"
	msgInvalidOTP         = "Invalid OTP format"
	msgSessionNotReady    = "bridge session is not ready"
	msgAuthInProgress     = "authentication already in progress"
)

// Gateway is the bridge between callers and the auth engine. All three
// operations are non-blocking: they validate synchronously, then pump engine
// responses to the sink from a goroutine. The session is single-flight for
// startAuth: a second startAuth while one stream is open fails fast without
// contacting the engine.
type Gateway struct {
	engine  engine.Engine
	session *Session
	logger  *logging.SafeLogger

	mu            sync.Mutex
	startInFlight bool
	startEpoch    uint64
}

// NewGateway creates a gateway around the given engine. The session starts
// UNINITIALIZED; call Setup before issuing operations.
func NewGateway(eng engine.Engine, logger *logging.SafeLogger) *Gateway {
	return &Gateway{
		engine:  eng,
		session: NewSession(logger),
		logger:  logger,
	}
}

// Session exposes the lifecycle manager for this gateway.
func (g *Gateway) Session() *Session {
	return g.session
}

// Setup binds the gateway to a hosting surface and environment mode. A prior
// binding's startAuth journey no longer occupies the single-flight slot: its
// responses are suppressed by the epoch bump, and its completion must not
// unlock a slot it no longer owns.
func (g *Gateway) Setup(host HostSurface, environment string) error {
	if err := g.session.Setup(host, environment); err != nil {
		return err
	}

	g.mu.Lock()
	g.startInFlight = false
	g.mu.Unlock()
	return nil
}

// CleanupAll tears down the session and unblocks the startAuth single-flight
// slot. Pending engine responses arriving afterwards are dropped.
func (g *Gateway) CleanupAll() {
	g.session.CleanupAll()

	g.mu.Lock()
	g.startInFlight = false
	g.mu.Unlock()
}

// InitAuth validates the app identity and forwards it to the engine. The
// sink receives exactly one response.
func (g *Gateway) InitAuth(ctx context.Context, cfg models.InitConfig, sink ResponseSink) {
	epoch, ready := g.session.currentEpoch()
	if !ready {
		observability.BridgeCalls.WithLabelValues("initAuth", "not_ready").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeGenericFailure, msgSessionNotReady))
		return
	}

	if err := utils.ValidateInitConfigFields(cfg.AppID, cfg.RequestID); err != nil {
		observability.BridgeCalls.WithLabelValues("initAuth", "validation_error").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, msgInitConfigRequired))
		return
	}

	observability.BridgeCalls.WithLabelValues("initAuth", "accepted").Inc()
	g.logger.Debug("initAuth accepted", zap.String("appId", cfg.AppID))

	stream := g.engine.Init(ctx, cfg)
	go g.pump(ctx, "initAuth", epoch, stream, sink, nil)
}

// StartAuth validates the phone number and forwards the authentication
// attempt to the engine. The sink may receive several responses before the
// terminal one.
func (g *Gateway) StartAuth(ctx context.Context, phoneNumber string, sink ResponseSink) {
	epoch, ready := g.session.currentEpoch()
	if !ready {
		observability.BridgeCalls.WithLabelValues("startAuth", "not_ready").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeGenericFailure, msgSessionNotReady))
		return
	}

	if err := utils.ValidatePhoneNumber(phoneNumber); err != nil {
		observability.BridgeCalls.WithLabelValues("startAuth", "validation_error").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, msgInvalidPhone))
		return
	}

	g.mu.Lock()
	if g.startInFlight {
		g.mu.Unlock()
		observability.BridgeCalls.WithLabelValues("startAuth", "rejected_busy").Inc()
		g.logger.Warn("rejecting overlapping startAuth call",
			zap.String("phone", observability.MaskPhone(phoneNumber)))
		sink.Deliver(models.NewFailureResponse(models.ErrCodeGenericFailure, msgAuthInProgress))
		return
	}
	g.startInFlight = true
	g.startEpoch = epoch
	g.mu.Unlock()

	observability.BridgeCalls.WithLabelValues("startAuth", "accepted").Inc()
	g.logDiagnostics(phoneNumber)

	stream := g.engine.StartAuth(ctx, models.AuthRequest{PhoneNumber: phoneNumber})
	go g.pump(ctx, "startAuth", epoch, stream, sink, func() {
		// A stream started under an earlier binding must not unlock the
		// slot of the journey that replaced it.
		g.mu.Lock()
		if g.startInFlight && g.startEpoch == epoch {
			g.startInFlight = false
		}
		g.mu.Unlock()
	})
}

// VerifyOtp validates the OTP shape and forwards the attempt to the engine.
// The sink receives exactly one terminal response, independent of any
// startAuth sink.
func (g *Gateway) VerifyOtp(ctx context.Context, phoneNumber, otp string, sink ResponseSink) {
	epoch, ready := g.session.currentEpoch()
	if !ready {
		observability.BridgeCalls.WithLabelValues("verifyOtp", "not_ready").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeGenericFailure, msgSessionNotReady))
		return
	}

	if err := utils.ValidateOTP(otp); err != nil {
		observability.BridgeCalls.WithLabelValues("verifyOtp", "validation_error").Inc()
		sink.Deliver(models.NewFailureResponse(models.ErrCodeInvalidParameter, msgInvalidOTP))
		return
	}

	observability.BridgeCalls.WithLabelValues("verifyOtp", "accepted").Inc()

	stream := g.engine.VerifyOtp(ctx, models.OtpAttempt{PhoneNumber: phoneNumber, OTP: otp})
	go g.pump(ctx, "verifyOtp", epoch, stream, sink, nil)
}

// pump forwards one call's engine stream to its sink in order, dropping
// responses whose epoch has been invalidated by Setup or CleanupAll. The
// stream is drained even when suppressed so the engine side never blocks.
func (g *Gateway) pump(ctx context.Context, method string, epoch uint64, stream <-chan models.AuthResponse, sink ResponseSink, done func()) {
	if done != nil {
		defer done()
	}
	start := time.Now()

	for {
		select {
		case resp, ok := <-stream:
			if !ok {
				return
			}
			observability.EngineResponses.WithLabelValues(method, resp.Status).Inc()
			g.session.deliver(epoch, sink, resp)
			if resp.IsTerminal() {
				observability.CallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			}
		case <-ctx.Done():
			return
		}
	}
}

// logDiagnostics emits development-only phone metadata. It never affects
// validation or responses.
func (g *Gateway) logDiagnostics(phoneNumber string) {
	if !g.session.Verbose() {
		return
	}

	region := "BR"
	if config.AppConfig != nil && config.AppConfig.DefaultPhoneRegion != "" {
		region = config.AppConfig.DefaultPhoneRegion
	}

	diag, err := utils.DescribePhoneNumber(phoneNumber, region)
	if err != nil {
		g.logger.Debug("startAuth accepted",
			zap.String("phone", observability.MaskPhone(phoneNumber)))
		return
	}
	g.logger.Debug("startAuth accepted",
		zap.String("phone", observability.MaskPhone(phoneNumber)),
		zap.String("region", diag.Region),
		zap.String("line_type", diag.LineType),
		zap.Bool("plausible", diag.Plausible),
	)
}
