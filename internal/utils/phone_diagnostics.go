package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneDiagnostics carries best-effort metadata about a phone number used
// only for development-mode logging. It never influences validation or the
// responses delivered to callbacks.
type PhoneDiagnostics struct {
	Region    string `json:"region"`
	E164      string `json:"e164"`
	LineType  string `json:"line_type"`
	Plausible bool   `json:"plausible"`
}

// DescribePhoneNumber parses a bridge phone number with libphonenumber and
// returns diagnostic metadata. Bridge numbers arrive without a country
// prefix, so the number is tried as-is with a leading + and then against the
// default region.
func DescribePhoneNumber(phone, defaultRegion string) (*PhoneDiagnostics, error) {
	clean := strings.TrimSpace(phone)
	if clean == "" {
		return nil, fmt.Errorf("empty phone number")
	}

	num, err := phonenumbers.Parse("+"+clean, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		num, err = phonenumbers.Parse(clean, defaultRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to parse phone number: %w", err)
		}
	}

	diag := &PhoneDiagnostics{
		Region:    phonenumbers.GetRegionCodeForNumber(num),
		E164:      phonenumbers.Format(num, phonenumbers.E164),
		LineType:  lineTypeName(phonenumbers.GetNumberType(num)),
		Plausible: phonenumbers.IsValidNumber(num),
	}
	return diag, nil
}

func lineTypeName(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.MOBILE:
		return "mobile"
	case phonenumbers.FIXED_LINE:
		return "fixed_line"
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return "fixed_line_or_mobile"
	case phonenumbers.VOIP:
		return "voip"
	default:
		return "unknown"
	}
}
