package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/snauth/authbridge/internal/engine/enginetest"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectSink records deliveries and signals each one on a channel.
type collectSink struct {
	mu        sync.Mutex
	responses []models.AuthResponse
	signal    chan struct{}
}

func newCollectSink() *collectSink {
	return &collectSink{signal: make(chan struct{}, 16)}
}

func (s *collectSink) Deliver(resp models.AuthResponse) {
	s.mu.Lock()
	s.responses = append(s.responses, resp)
	s.mu.Unlock()
	s.signal <- struct{}{}
}

func (s *collectSink) all() []models.AuthResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuthResponse, len(s.responses))
	copy(out, s.responses)
	return out
}

// wait blocks until n responses arrived or the test times out.
func (s *collectSink) wait(t *testing.T, n int) []models.AuthResponse {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if got := s.all(); len(got) >= n {
			return got
		}
		select {
		case <-s.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d responses, got %d", n, len(s.all()))
		}
	}
}

// assertNone asserts no response arrives within a short window.
func (s *collectSink) assertNone(t *testing.T) {
	t.Helper()
	select {
	case <-s.signal:
		t.Fatalf("unexpected response delivered: %+v", s.all())
	case <-time.After(200 * time.Millisecond):
	}
}

func newReadyGateway(t *testing.T, fake *enginetest.FakeEngine) *Gateway {
	t.Helper()
	gw := NewGateway(fake, logging.Logger)
	require.NoError(t, gw.Setup(nil, models.EnvironmentProduction))
	return gw
}

func TestInitAuth_EmptyFieldsFailWithoutEngine(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.InitConfig
	}{
		{name: "empty appId", cfg: models.InitConfig{AppID: "", RequestID: "r"}},
		{name: "empty requestId", cfg: models.InitConfig{AppID: "a", RequestID: ""}},
		{name: "both empty", cfg: models.InitConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := enginetest.NewFakeEngine()
			gw := newReadyGateway(t, fake)
			sink := newCollectSink()

			gw.InitAuth(context.Background(), tt.cfg, sink)

			// Delivered synchronously, before the call returns
			got := sink.all()
			require.Len(t, got, 1)
			assert.Equal(t, models.StatusFailure, got[0].Status)
			assert.Equal(t, "1001", got[0].ErrorCode)
			assert.Equal(t, "appId and requestId are required", got[0].ErrorMessage)
			assert.Zero(t, fake.TotalCalls(), "engine must not be contacted on validation failure")
		})
	}
}

func TestInitAuth_EngineSuccess(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.InitScript = []models.AuthResponse{{Status: models.StatusSuccess, StatusCode: "200"}}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.InitAuth(context.Background(), models.InitConfig{AppID: "a", RequestID: "r"}, sink)

	got := sink.wait(t, 1)
	assert.Equal(t, models.StatusSuccess, got[0].Status)
	assert.Equal(t, "200", got[0].StatusCode)
	assert.Equal(t, 1, fake.InitCalls)
}

func TestInitAuth_BeforeSetup(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	gw := NewGateway(fake, logging.Logger)
	sink := newCollectSink()

	gw.InitAuth(context.Background(), models.InitConfig{AppID: "a", RequestID: "r"}, sink)

	got := sink.all()
	require.Len(t, got, 1)
	assert.Equal(t, "1002", got[0].ErrorCode)
	assert.Zero(t, fake.TotalCalls())
}

func TestStartAuth_InvalidPhoneNumbers(t *testing.T) {
	for _, phone := range []string{"0876543210", "123456", "1234567890123456", "98a6543210", "", "+5521999999999"} {
		t.Run(phone, func(t *testing.T) {
			fake := enginetest.NewFakeEngine()
			gw := newReadyGateway(t, fake)
			sink := newCollectSink()

			gw.StartAuth(context.Background(), phone, sink)

			got := sink.all()
			require.Len(t, got, 1)
			assert.Equal(t, models.StatusFailure, got[0].Status)
			assert.Equal(t, "1001", got[0].ErrorCode)
			assert.Equal(t, "Invalid phone number format", got[0].ErrorMessage)
			assert.Zero(t, fake.TotalCalls())
		})
	}
}

func TestStartAuth_SilentAuthSuccess(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "tok-silent")}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.StartAuth(context.Background(), "9876543210", sink)

	got := sink.wait(t, 1)
	require.Len(t, got, 1)
	assert.Equal(t,
		`{"status":"SUCCESS","statusCode":"200","authType":"SILENT_AUTH","token":"tok-silent"}`,
		got[0].MarshalString(),
	)
	require.Len(t, fake.StartRequests, 1)
	assert.Equal(t, "9876543210", fake.StartRequests[0].PhoneNumber)
}

func TestStartAuth_OtpFlowOrdering(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.StartScript = []models.AuthResponse{
		models.NewStatusResponse(models.StatusInitiate),
		{Status: models.StatusDeliveryStatus, StatusCode: "200", DeliveryChannel: "SMS"},
		models.NewStatusResponse(models.StatusVerify),
		models.NewSuccessResponse(models.AuthTypeOTP, "tok-otp"),
	}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.StartAuth(context.Background(), "9876543210", sink)

	got := sink.wait(t, 4)
	statuses := make([]string, len(got))
	for i, r := range got {
		statuses[i] = r.Status
	}
	assert.Equal(t, []string{"INITIATE", "DELIVERY_STATUS", "VERIFY", "SUCCESS"}, statuses)
}

func TestVerifyOtp_InvalidFormats(t *testing.T) {
	for _, otp := range []string{"123", "123456789", "12a4", ""} {
		t.Run(otp, func(t *testing.T) {
			fake := enginetest.NewFakeEngine()
			gw := newReadyGateway(t, fake)
			sink := newCollectSink()

			gw.VerifyOtp(context.Background(), "9876543210", otp, sink)

			got := sink.all()
			require.Len(t, got, 1)
			assert.Equal(t, "1001", got[0].ErrorCode)
			assert.Equal(t, "Invalid OTP format", got[0].ErrorMessage)
			assert.Zero(t, fake.TotalCalls())
		})
	}
}

func TestVerifyOtp_Success(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.VerifyScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeOTP, "tok-9")}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.VerifyOtp(context.Background(), "9876543210", "123456", sink)

	got := sink.wait(t, 1)
	assert.Equal(t,
		`{"status":"SUCCESS","statusCode":"200","authType":"OTP","token":"tok-9"}`,
		got[0].MarshalString(),
	)
	require.Len(t, fake.VerifyAttempts, 1)
	assert.Equal(t, "123456", fake.VerifyAttempts[0].OTP)
}

func TestCleanupAll_SuppressesPendingCallbacks(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.Hold = make(chan struct{})
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "late-token")}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.StartAuth(context.Background(), "9876543210", sink)
	require.Equal(t, 1, fake.StartCalls)

	gw.CleanupAll()
	close(fake.Hold) // engine completes after teardown

	sink.assertNone(t)
}

func TestCleanupAll_ReleasesSingleFlightSlot(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.Hold = make(chan struct{})
	gw := newReadyGateway(t, fake)

	gw.StartAuth(context.Background(), "9876543210", newCollectSink())
	gw.CleanupAll()
	close(fake.Hold)

	// Fresh setup accepts a new startAuth immediately
	require.NoError(t, gw.Setup(nil, models.EnvironmentProduction))
	fake.Hold = nil
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "t")}

	sink := newCollectSink()
	gw.StartAuth(context.Background(), "9876543210", sink)
	got := sink.wait(t, 1)
	assert.Equal(t, models.StatusSuccess, got[0].Status)
}

func TestStartAuth_SingleFlight(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.Hold = make(chan struct{})
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "tok")}
	gw := newReadyGateway(t, fake)

	first := newCollectSink()
	gw.StartAuth(context.Background(), "9876543210", first)

	second := newCollectSink()
	gw.StartAuth(context.Background(), "9876543211", second)

	got := second.all()
	require.Len(t, got, 1)
	assert.Equal(t, "1002", got[0].ErrorCode)
	assert.Equal(t, "authentication already in progress", got[0].ErrorMessage)
	assert.Equal(t, 1, fake.StartCalls, "second call must not reach the engine")

	close(fake.Hold)
	first.wait(t, 1)

	// Slot is free again after the stream ends
	fake.Hold = nil
	third := newCollectSink()
	gw.StartAuth(context.Background(), "9876543212", third)
	gotThird := third.wait(t, 1)
	assert.Equal(t, models.StatusSuccess, gotThird[0].Status)
}

func TestStartAuth_StaleStreamDoesNotUnlockNewSession(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	holdFirst := make(chan struct{})
	fake.Hold = holdFirst
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "tok")}
	gw := newReadyGateway(t, fake)

	first := newCollectSink()
	gw.StartAuth(context.Background(), "9876543210", first)
	require.Equal(t, 1, fake.StartCalls)

	// The first journey's binding is replaced while its stream is still open
	gw.CleanupAll()
	require.NoError(t, gw.Setup(nil, models.EnvironmentProduction))

	holdSecond := make(chan struct{})
	fake.Hold = holdSecond
	second := newCollectSink()
	gw.StartAuth(context.Background(), "9876543211", second)
	require.Equal(t, 2, fake.StartCalls)

	// The stale stream completes; its suppressed terminal response must not
	// free the slot the second journey holds.
	close(holdFirst)
	first.assertNone(t)

	third := newCollectSink()
	gw.StartAuth(context.Background(), "9876543212", third)
	got := third.all()
	require.Len(t, got, 1)
	assert.Equal(t, "1002", got[0].ErrorCode)
	assert.Equal(t, "authentication already in progress", got[0].ErrorMessage)
	assert.Equal(t, 2, fake.StartCalls, "overlapping call must not reach the engine")

	// The live journey still completes and frees the slot
	close(holdSecond)
	second.wait(t, 1)

	fake.Hold = nil
	fourth := newCollectSink()
	gw.StartAuth(context.Background(), "9876543213", fourth)
	gotFourth := fourth.wait(t, 1)
	assert.Equal(t, models.StatusSuccess, gotFourth[0].Status)
}

func TestVerifyOtp_AllowedDuringStartAuthFlow(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.Hold = make(chan struct{})
	defer close(fake.Hold)
	fake.VerifyScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeOTP, "tok")}
	gw := newReadyGateway(t, fake)

	gw.StartAuth(context.Background(), "9876543210", newCollectSink())

	// verifyOtp is not gated by the startAuth single-flight slot
	sink := newCollectSink()
	gw.VerifyOtp(context.Background(), "9876543210", "1234", sink)
	assert.Equal(t, 1, fake.VerifyCalls)
}

func TestReSetup_InvalidatesPriorBinding(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.Hold = make(chan struct{})
	fake.StartScript = []models.AuthResponse{models.NewSuccessResponse(models.AuthTypeSilent, "old")}
	gw := newReadyGateway(t, fake)
	oldSink := newCollectSink()

	gw.StartAuth(context.Background(), "9876543210", oldSink)

	// Idempotent re-setup replaces the binding
	require.NoError(t, gw.Setup(nil, models.EnvironmentProduction))
	close(fake.Hold)

	oldSink.assertNone(t)
}

func TestFailureResponsesCarryErrorFields(t *testing.T) {
	fake := enginetest.NewFakeEngine()
	fake.StartScript = []models.AuthResponse{
		models.NewFailureResponse(models.ErrCodeSilentAuthFailed, "Silent network authentication failed"),
	}
	gw := newReadyGateway(t, fake)
	sink := newCollectSink()

	gw.StartAuth(context.Background(), "9876543210", sink)

	got := sink.wait(t, 1)
	require.True(t, got[0].IsFailure())
	assert.NotEmpty(t, got[0].ErrorCode)
	assert.NotEmpty(t, got[0].ErrorMessage)
	assert.Empty(t, got[0].Normalize().Token)
	assert.Empty(t, got[0].Normalize().AuthType)
}
