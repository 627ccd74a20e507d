// Package enginestub is a scripted stand-in for the real auth engine. It is
// not an authentication implementation: response sequences are chosen by
// phone-number shape so the demo app and integration tests can exercise
// every bridge flow deterministically.
package enginestub

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"go.uber.org/zap"
)

// Scenario selection by phone shape:
//
//	prefix 999          → terminal silent-network-auth failure (9106)
//	prefix 555          → SNA fallback: FALLBACK_TRIGGERED, then the OTP flow
//	last digit even     → silent auth completes directly (SUCCESS)
//	anything else       → OTP flow: INITIATE, DELIVERY_STATUS, wait for verify
const (
	prefixSNAFailure = "999"
	prefixFallback   = "555"
)

// otpWaitTimeout bounds how long a pending OTP stream waits for a verify
// before failing the flow.
const otpWaitTimeout = 5 * time.Minute

// Service holds the stub's scripted behavior.
type Service struct {
	bus    FlowBus
	otp    string
	logger *logging.SafeLogger
}

// NewService creates a stub service accepting the given static OTP.
func NewService(bus FlowBus, otp string, logger *logging.SafeLogger) *Service {
	return &Service{bus: bus, otp: otp, logger: logger}
}

// Init answers an engine init request.
func (s *Service) Init(cfg models.InitConfig) models.AuthResponse {
	if cfg.AppID == "" || cfg.RequestID == "" {
		return models.NewFailureResponse(models.ErrCodeInitFailure, "SDK initialization failed: unknown app identity")
	}
	return models.AuthResponse{Status: models.StatusSuccess, StatusCode: models.StatusCodeOK}
}

// StartAuth plays the scenario scripted for the phone number. The returned
// stream is closed after the terminal response.
func (s *Service) StartAuth(ctx context.Context, phone string) <-chan models.AuthResponse {
	out := make(chan models.AuthResponse, 8)

	go func() {
		defer close(out)

		s.logger.Info("stub engine startAuth",
			zap.String("phone", observability.MaskPhone(phone)))

		switch {
		case strings.HasPrefix(phone, prefixSNAFailure):
			emit(ctx, out, models.NewFailureResponse(models.ErrCodeSilentAuthFailed, "Silent network authentication failed"))

		case strings.HasPrefix(phone, prefixFallback):
			if !emit(ctx, out, models.NewStatusResponse(models.StatusFallbackTriggered)) {
				return
			}
			s.otpFlow(ctx, out, phone)

		case silentAuthEligible(phone):
			emit(ctx, out, models.NewSuccessResponse(models.AuthTypeSilent, newToken()))

		default:
			s.otpFlow(ctx, out, phone)
		}
	}()

	return out
}

// VerifyOtp answers a verification attempt and, on success, completes any
// stream waiting on the same phone through the flow bus.
func (s *Service) VerifyOtp(ctx context.Context, phone, otp string) models.AuthResponse {
	if otp != s.otp {
		return models.NewFailureResponse(models.ErrCodeGenericFailure, "Incorrect OTP")
	}

	resp := models.NewSuccessResponse(models.AuthTypeOTP, newToken())

	if err := s.bus.Publish(ctx, phone, models.NewStatusResponse(models.StatusVerify)); err != nil {
		s.logger.Warn("failed to publish verify progress", zap.Error(err))
	}
	if err := s.bus.Publish(ctx, phone, resp); err != nil {
		s.logger.Warn("failed to publish verify result", zap.Error(err))
	}

	return resp
}

// otpFlow emits the OTP dispatch responses, then relays bus messages until
// the flow terminates, the verify window expires, or the caller goes away.
func (s *Service) otpFlow(ctx context.Context, out chan<- models.AuthResponse, phone string) {
	flow, cancel, err := s.bus.Subscribe(ctx, phone)
	if err != nil {
		s.logger.Error("failed to subscribe to flow bus", zap.Error(err))
		emit(ctx, out, models.NewFailureResponse(models.ErrCodeGenericFailure, "Authentication request failed"))
		return
	}
	defer cancel()

	if !emit(ctx, out, models.AuthResponse{
		Status:          models.StatusInitiate,
		StatusCode:      models.StatusCodeOK,
		DeliveryChannel: "SMS",
	}) {
		return
	}
	if !emit(ctx, out, models.AuthResponse{
		Status:          models.StatusDeliveryStatus,
		StatusCode:      models.StatusCodeOK,
		DeliveryChannel: "SMS",
	}) {
		return
	}

	timeout := time.NewTimer(otpWaitTimeout)
	defer timeout.Stop()

	for {
		select {
		case resp, ok := <-flow:
			if !ok {
				return
			}
			if !emit(ctx, out, resp) {
				return
			}
			if resp.IsTerminal() {
				return
			}
		case <-timeout.C:
			emit(ctx, out, models.NewFailureResponse(models.ErrCodeGenericFailure, "OTP verification window expired"))
			return
		case <-ctx.Done():
			return
		}
	}
}

func emit(ctx context.Context, out chan<- models.AuthResponse, resp models.AuthResponse) bool {
	select {
	case out <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}

func silentAuthEligible(phone string) bool {
	if phone == "" {
		return false
	}
	last := phone[len(phone)-1]
	return last >= '0' && (last-'0')%2 == 0
}

func newToken() string {
	return uuid.NewString()
}
