package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"github.com/snauth/authbridge/internal/utils/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	initPath   = "/v1/init"
	startPath  = "/v1/auth/start"
	verifyPath = "/v1/auth/verify"
)

// HTTPEngine reaches the auth engine service over HTTP. Single-shot calls
// (init, verify) use pooled clients; startAuth reads a newline-delimited
// JSON stream so the engine can push several responses over one request.
type HTTPEngine struct {
	baseURL   string
	pool      *httpclient.Pool
	streaming *http.Client
}

// NewHTTPEngine creates an engine client for the given base URL.
func NewHTTPEngine(baseURL string, requestTimeout time.Duration) *HTTPEngine {
	return &HTTPEngine{
		baseURL:   baseURL,
		pool:      httpclient.NewPool(10, requestTimeout),
		streaming: httpclient.NewStreamingClient(),
	}
}

// Close releases the client pool.
func (e *HTTPEngine) Close() {
	e.pool.Close()
}

// Init implements Engine.
func (e *HTTPEngine) Init(ctx context.Context, cfg models.InitConfig) <-chan models.AuthResponse {
	return e.single(ctx, "init", initPath, cfg, models.ErrCodeInitFailure, "SDK initialization failed")
}

// VerifyOtp implements Engine.
func (e *HTTPEngine) VerifyOtp(ctx context.Context, attempt models.OtpAttempt) <-chan models.AuthResponse {
	return e.single(ctx, "verifyOtp", verifyPath, attempt, models.ErrCodeGenericFailure, "OTP verification failed")
}

// StartAuth implements Engine.
func (e *HTTPEngine) StartAuth(ctx context.Context, req models.AuthRequest) <-chan models.AuthResponse {
	out := make(chan models.AuthResponse, 4)

	go func() {
		defer close(out)

		ctx, span := otel.Tracer("engine").Start(ctx, "engine.start_auth",
			trace.WithAttributes(
				attribute.String("engine.operation", "startAuth"),
				attribute.String("engine.phone", observability.MaskPhone(req.PhoneNumber)),
			),
		)
		defer span.End()

		resp, err := e.post(ctx, e.streaming, startPath, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.Logger().Warn("engine startAuth request failed", zap.Error(err))
			out <- models.NewFailureResponse(models.ErrCodeGenericFailure, "Authentication request failed")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			span.SetStatus(codes.Error, resp.Status)
			out <- failureFromStatus(resp, models.ErrCodeGenericFailure, "Authentication request failed")
			return
		}

		decoder := json.NewDecoder(resp.Body)
		for {
			var r models.AuthResponse
			if err := decoder.Decode(&r); err != nil {
				if err == io.EOF || ctx.Err() != nil {
					return
				}
				span.RecordError(err)
				out <- models.NewFailureResponse(models.ErrCodeGenericFailure, "Authentication stream interrupted")
				return
			}

			select {
			case out <- r:
			case <-ctx.Done():
				return
			}

			if r.IsTerminal() {
				span.SetStatus(codes.Ok, r.Status)
				return
			}
		}
	}()

	return out
}

// single performs a one-request one-response engine call.
func (e *HTTPEngine) single(ctx context.Context, op, path string, body any, failCode, failMessage string) <-chan models.AuthResponse {
	out := make(chan models.AuthResponse, 1)

	go func() {
		defer close(out)

		ctx, span := otel.Tracer("engine").Start(ctx, "engine."+op,
			trace.WithAttributes(attribute.String("engine.operation", op)),
		)
		defer span.End()

		client := e.pool.Get()
		defer e.pool.Put(client)

		resp, err := e.post(ctx, client, path, body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.Logger().Warn("engine request failed",
				zap.String("operation", op), zap.Error(err))
			out <- models.NewFailureResponse(failCode, failMessage)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			span.SetStatus(codes.Error, resp.Status)
			out <- failureFromStatus(resp, failCode, failMessage)
			return
		}

		var r models.AuthResponse
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			span.RecordError(err)
			out <- models.NewFailureResponse(failCode, failMessage)
			return
		}
		span.SetStatus(codes.Ok, r.Status)
		out <- r
	}()

	return out
}

func (e *HTTPEngine) post(ctx context.Context, client *http.Client, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	return client.Do(req)
}

// failureFromStatus prefers an engine-reported FAILURE body over the generic
// fallback so engine error codes such as 9106 pass through verbatim.
func failureFromStatus(resp *http.Response, fallbackCode, fallbackMessage string) models.AuthResponse {
	var r models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err == nil && r.IsFailure() && r.ErrorCode != "" {
		return r
	}
	return models.NewFailureResponse(fallbackCode, fallbackMessage)
}
