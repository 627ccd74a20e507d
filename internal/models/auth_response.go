package models

import "encoding/json"

// Status values delivered to bridge callbacks
const (
	StatusSuccess           = "SUCCESS"
	StatusFailure           = "FAILURE"
	StatusInitiate          = "INITIATE"
	StatusOtpAutoRead       = "OTP_AUTO_READ"
	StatusVerify            = "VERIFY"
	StatusDeliveryStatus    = "DELIVERY_STATUS"
	StatusFallbackTriggered = "FALLBACK_TRIGGERED"
)

// Error codes surfaced to bridge callbacks
const (
	ErrCodeInvalidParameter = "1001"
	ErrCodeGenericFailure   = "1002"
	ErrCodeInitFailure      = "5003"
	ErrCodeSilentAuthFailed = "9106"
)

// Auth types reported on successful responses
const (
	AuthTypeSilent = "SILENT_AUTH"
	AuthTypeOTP    = "OTP"
)

// StatusCodeOK is the statusCode carried by every non-failure response.
const StatusCodeOK = "200"

// AuthResponse is the outcome of a bridge call. A FAILURE response carries
// errorCode and errorMessage and nothing else besides status; every other
// status carries statusCode and the optional success fields.
type AuthResponse struct {
	Status          string `json:"status"`
	StatusCode      string `json:"statusCode,omitempty"`
	ErrorCode       string `json:"errorCode,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	AuthType        string `json:"authType,omitempty"`
	Token           string `json:"token,omitempty"`
	DeliveryChannel string `json:"deliveryChannel,omitempty"`
}

// NewFailureResponse builds a FAILURE response for the given error code.
func NewFailureResponse(code, message string) AuthResponse {
	return AuthResponse{
		Status:       StatusFailure,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// NewSuccessResponse builds a terminal SUCCESS response.
func NewSuccessResponse(authType, token string) AuthResponse {
	return AuthResponse{
		Status:     StatusSuccess,
		StatusCode: StatusCodeOK,
		AuthType:   authType,
		Token:      token,
	}
}

// NewStatusResponse builds an intermediate (non-terminal) response such as
// INITIATE or DELIVERY_STATUS.
func NewStatusResponse(status string) AuthResponse {
	return AuthResponse{
		Status:     status,
		StatusCode: StatusCodeOK,
	}
}

// IsFailure reports whether the response is a FAILURE.
func (r AuthResponse) IsFailure() bool {
	return r.Status == StatusFailure
}

// IsTerminal reports whether the response ends its call's stream. Only
// SUCCESS and FAILURE are terminal; everything else is an intermediate
// progress report on a startAuth stream.
func (r AuthResponse) IsTerminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailure
}

// Normalize enforces the response shape invariants before serialization:
// failures carry only error fields, non-failures never carry them.
func (r AuthResponse) Normalize() AuthResponse {
	if r.Status == StatusFailure {
		r.StatusCode = ""
		r.AuthType = ""
		r.Token = ""
		r.DeliveryChannel = ""
		return r
	}
	r.ErrorCode = ""
	r.ErrorMessage = ""
	if r.StatusCode == "" {
		r.StatusCode = StatusCodeOK
	}
	return r
}

// MarshalString serializes the normalized response to the JSON string handed
// to callbacks. Marshalling a flat string-field struct cannot fail.
func (r AuthResponse) MarshalString() string {
	data, err := json.Marshal(r.Normalize())
	if err != nil {
		return `{"status":"FAILURE","errorCode":"1002","errorMessage":"response serialization failed"}`
	}
	return string(data)
}
