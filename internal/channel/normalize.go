package channel

import "strings"

// kenyaCountryCode prefixes locally formatted Kenyan mobile numbers.
const kenyaCountryCode = "254"

// NormalizeAddress converts a raw phone number into normalized international
// form: digits only, country code first, no plus sign. Local Kenyan formats
// are converted using leading-digit heuristics; anything already in
// international form passes through unchanged, so the function is idempotent.
func NormalizeAddress(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// "00" international dialing prefix.
	if strings.HasPrefix(digits, "00") && len(digits) > 4 {
		digits = digits[2:]
	}

	switch {
	case strings.HasPrefix(digits, kenyaCountryCode):
		return digits
	// Local format with trunk zero: 07XXXXXXXX / 01XXXXXXXX.
	case len(digits) == 10 && digits[0] == '0' && (digits[1] == '7' || digits[1] == '1'):
		return kenyaCountryCode + digits[1:]
	// Bare subscriber number: 7XXXXXXXX / 1XXXXXXXX.
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		return kenyaCountryCode + digits
	default:
		return digits
	}
}
