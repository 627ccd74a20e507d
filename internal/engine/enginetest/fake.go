// Package enginetest provides a scriptable in-memory Engine for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/snauth/authbridge/internal/engine"
	"github.com/snauth/authbridge/internal/models"
)

var _ engine.Engine = (*FakeEngine)(nil)

// FakeEngine plays the auth engine from pre-loaded response scripts. Each
// method pops its scripted responses onto the returned stream; unscripted
// calls answer with a generic failure so tests fail loudly instead of
// hanging. Call counters let tests assert the engine was or was not
// contacted.
type FakeEngine struct {
	lock sync.Mutex

	InitScript   []models.AuthResponse
	StartScript  []models.AuthResponse
	VerifyScript []models.AuthResponse

	// Hold, when set, is closed by the test to release scripted responses;
	// it simulates an engine that completes after some delay.
	Hold chan struct{}

	InitCalls   int
	StartCalls  int
	VerifyCalls int

	StartRequests  []models.AuthRequest
	VerifyAttempts []models.OtpAttempt
}

// NewFakeEngine creates an empty fake; load scripts before use.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{}
}

// Init implements engine.Engine.
func (f *FakeEngine) Init(ctx context.Context, cfg models.InitConfig) <-chan models.AuthResponse {
	f.lock.Lock()
	f.InitCalls++
	script := f.InitScript
	hold := f.Hold
	f.lock.Unlock()

	return f.play(ctx, script, hold)
}

// StartAuth implements engine.Engine.
func (f *FakeEngine) StartAuth(ctx context.Context, req models.AuthRequest) <-chan models.AuthResponse {
	f.lock.Lock()
	f.StartCalls++
	f.StartRequests = append(f.StartRequests, req)
	script := f.StartScript
	hold := f.Hold
	f.lock.Unlock()

	return f.play(ctx, script, hold)
}

// VerifyOtp implements engine.Engine.
func (f *FakeEngine) VerifyOtp(ctx context.Context, attempt models.OtpAttempt) <-chan models.AuthResponse {
	f.lock.Lock()
	f.VerifyCalls++
	f.VerifyAttempts = append(f.VerifyAttempts, attempt)
	script := f.VerifyScript
	hold := f.Hold
	f.lock.Unlock()

	return f.play(ctx, script, hold)
}

// TotalCalls returns how many engine operations have been invoked.
func (f *FakeEngine) TotalCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.InitCalls + f.StartCalls + f.VerifyCalls
}

func (f *FakeEngine) play(ctx context.Context, script []models.AuthResponse, hold chan struct{}) <-chan models.AuthResponse {
	out := make(chan models.AuthResponse, len(script)+1)

	go func() {
		defer close(out)

		if hold != nil {
			select {
			case <-hold:
			case <-ctx.Done():
				return
			}
		}

		if len(script) == 0 {
			out <- models.NewFailureResponse(models.ErrCodeGenericFailure, "no scripted response")
			return
		}

		for _, resp := range script {
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
			if resp.IsTerminal() {
				return
			}
		}
	}()

	return out
}
