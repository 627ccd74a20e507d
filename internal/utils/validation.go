package utils

import (
	"fmt"
	"regexp"
)

var (
	// phoneRegex accepts 7 to 15 digits with no leading zero, the national
	// significant number shape the engine expects.
	phoneRegex = regexp.MustCompile(`^[1-9]\d{6,14}$`)

	// otpRegex accepts the 4 to 8 digit one-time passwords the engine issues.
	otpRegex = regexp.MustCompile(`^\d{4,8}$`)
)

// ValidatePhoneNumber checks that a phone number has the format required by
// startAuth and verifyOtp.
func ValidatePhoneNumber(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number format: %q", phone)
	}
	return nil
}

// ValidateOTP checks that an OTP string has the format required by verifyOtp.
func ValidateOTP(otp string) error {
	if !otpRegex.MatchString(otp) {
		return fmt.Errorf("invalid OTP format")
	}
	return nil
}

// ValidateInitConfigFields checks the initAuth identity fields.
func ValidateInitConfigFields(appID, requestID string) error {
	if appID == "" || requestID == "" {
		return fmt.Errorf("appId and requestId are required")
	}
	return nil
}
