package models

import "encoding/json"

// InitConfig identifies the host application for one authentication journey.
// It arrives over the bridge as a JSON string argument.
type InitConfig struct {
	AppID     string `json:"appId"`
	RequestID string `json:"requestId"`
}

// ParseInitConfig decodes the initAuth JSON string argument. A decode error
// is treated the same as an empty config; the gateway validates the fields
// either way.
func ParseInitConfig(raw string) InitConfig {
	var cfg InitConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return InitConfig{}
	}
	return cfg
}

// AuthRequest is a phone-based authentication attempt forwarded to the
// engine by startAuth.
type AuthRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// OtpAttempt is a single OTP verification attempt forwarded to the engine
// by verifyOtp.
type OtpAttempt struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

// Environment values accepted by session setup. Development enables verbose
// diagnostics; the flag never changes validation or response content.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)
