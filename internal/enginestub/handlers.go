package enginestub

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snauth/authbridge/internal/models"
	"github.com/snauth/authbridge/internal/observability"
	"go.uber.org/zap"
)

// Handlers exposes the stub engine over the wire protocol the bridge's
// HTTP engine client speaks: JSON in, a single JSON response out for init
// and verify, a newline-delimited JSON stream out for start.
type Handlers struct {
	service *Service
}

// NewHandlers creates HTTP handlers around the stub service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Register mounts the engine endpoints on the router.
func (h *Handlers) Register(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/init", h.Init)
		v1.POST("/auth/start", h.StartAuth)
		v1.POST("/auth/verify", h.VerifyOtp)
	}
}

// Init handles an engine init request.
func (h *Handlers) Init(c *gin.Context) {
	var cfg models.InitConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, models.NewFailureResponse(models.ErrCodeInitFailure, "SDK initialization failed: malformed request"))
		return
	}

	resp := h.service.Init(cfg)
	if resp.IsFailure() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartAuth handles an authentication attempt, streaming the scenario's
// responses until the terminal one.
func (h *Handlers) StartAuth(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, models.NewFailureResponse(models.ErrCodeGenericFailure, "Authentication request failed: malformed request"))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.NewFailureResponse(models.ErrCodeGenericFailure, "streaming unsupported"))
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(c.Writer)
	for resp := range h.service.StartAuth(c.Request.Context(), req.PhoneNumber) {
		if err := encoder.Encode(resp.Normalize()); err != nil {
			observability.Logger().Debug("start stream client gone", zap.Error(err))
			return
		}
		flusher.Flush()
	}
}

// VerifyOtp handles a verification attempt.
func (h *Handlers) VerifyOtp(c *gin.Context) {
	var attempt models.OtpAttempt
	if err := c.ShouldBindJSON(&attempt); err != nil {
		c.JSON(http.StatusBadRequest, models.NewFailureResponse(models.ErrCodeGenericFailure, "OTP verification failed: malformed request"))
		return
	}

	resp := h.service.VerifyOtp(c.Request.Context(), attempt.PhoneNumber, attempt.OTP)
	if resp.IsFailure() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
