package bridge

import (
	"fmt"
	"sync"

	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"go.uber.org/zap"
)

// State is the lifecycle state of a bridge session.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateTornDown:
		return "TORN_DOWN"
	default:
		return "UNINITIALIZED"
	}
}

// HostSurface is the non-owning handle to whatever presents the hosted web
// content. The session never controls the host's lifetime; a host that has
// gone away reports an error from InvokeCallback and the session drops the
// response.
type HostSurface interface {
	InvokeCallback(name, payload string) error
}

// Session binds the gateway to at most one hosting surface and one
// environment mode. Every delivery is tagged with the epoch current at call
// time; Setup and CleanupAll bump the epoch, so responses pending from an
// earlier binding are suppressed rather than delivered.
type Session struct {
	mu          sync.RWMutex
	state       State
	environment string
	epoch       uint64
	host        HostSurface
	logger      *logging.SafeLogger
}

// NewSession creates a session in the UNINITIALIZED state.
func NewSession(logger *logging.SafeLogger) *Session {
	return &Session{logger: logger}
}

// Setup binds the session to a hosting surface and environment mode. A nil
// host is allowed for the native (non-WebView) call path. Re-setup replaces
// the prior binding and invalidates its pending deliveries.
func (s *Session) Setup(host HostSurface, environment string) error {
	if environment != models.EnvironmentDevelopment && environment != models.EnvironmentProduction {
		return fmt.Errorf("invalid environment %q: must be development or production", environment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		s.logger.Info("replacing active bridge session binding")
	}

	s.epoch++
	s.state = StateReady
	s.environment = environment
	s.host = host

	s.logger.Info("bridge session ready",
		zap.String("environment", environment),
		zap.Uint64("epoch", s.epoch),
	)
	return nil
}

// CleanupAll tears the session down: pending deliveries are invalidated and
// the host handle is released. Safe to call repeatedly.
func (s *Session) CleanupAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTornDown {
		return
	}

	s.epoch++
	s.state = StateTornDown
	s.host = nil

	s.logger.Info("bridge session torn down", zap.Uint64("epoch", s.epoch))
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Environment returns the bound environment mode, or empty before Setup.
func (s *Session) Environment() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environment
}

// Verbose reports whether development-mode diagnostics are enabled.
func (s *Session) Verbose() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environment == models.EnvironmentDevelopment
}

// Host returns the bound hosting surface, which is nil before Setup, after
// CleanupAll, or for native sessions.
func (s *Session) Host() HostSurface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// currentEpoch returns the epoch to tag a new call with, and whether the
// session accepts calls at all.
func (s *Session) currentEpoch() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.state == StateReady
}

// deliver hands a response to the sink if the tagged epoch is still the live
// one. Holding the read lock across delivery makes CleanupAll a hard cut:
// once it returns, no pending delivery can slip through. Sinks must not
// block.
func (s *Session) deliver(epoch uint64, sink ResponseSink, resp models.AuthResponse) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateReady || epoch != s.epoch {
		observability.SuppressedCallbacks.Inc()
		s.logger.Debug("suppressing response for stale session epoch",
			zap.Uint64("response_epoch", epoch),
			zap.Uint64("session_epoch", s.epoch),
			zap.String("status", resp.Status),
		)
		return false
	}

	sink.Deliver(resp)
	return true
}
