package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	assert.NotNil(t, Logger())
	// Safe to use immediately
	Logger().Info("test")
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{name: "ten digits", phone: "9876543210", want: "********10"},
		{name: "seven digits", phone: "1234567", want: "*****67"},
		{name: "too short", phone: "123", want: "****"},
		{name: "empty", phone: "", want: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.phone))
		})
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "********", MaskToken("short"))
	assert.Equal(t, "********", MaskToken(""))

	masked := MaskToken("abcd1234efgh5678")
	assert.Equal(t, "abcd…5678", masked)
	assert.NotContains(t, masked, "1234efgh")
}

func TestMaskSensitiveData(t *testing.T) {
	data := map[string]interface{}{
		"phoneNumber": "9876543210",
		"otp":         "1234",
		"token":       "secret-token",
		"method":      "startAuth",
	}

	masked := MaskSensitiveData(data)

	assert.Equal(t, "********", masked["phoneNumber"])
	assert.Equal(t, "********", masked["otp"])
	assert.Equal(t, "********", masked["token"])
	assert.Equal(t, "startAuth", masked["method"])
}
