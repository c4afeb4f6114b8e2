package utils

import (
	"regexp"
	"strings"
)

// Redaction for audit payloads. Evidence blobs from the gateway or the
// widget may echo card fields; nothing card-shaped may reach storage.

var panPattern = regexp.MustCompile(`\d{13,19}`)

var redactedKeys = map[string]bool{
	"card_number":          true,
	"pan":                  true,
	"primaryaccountnumber": true,
	"card_cvv":             true,
	"cvv":                  true,
	"cvc":                  true,
}

var expiryKeys = map[string]bool{
	"card_expire": true,
	"expiry":      true,
	"expire":      true,
}

// MaskCardLike masks any 13-19 digit run, keeping the last four digits.
func MaskCardLike(s string) string {
	return panPattern.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat("*", len(m)-4) + m[len(m)-4:]
	})
}

// RedactPayload deep-copies a decoded JSON value, removing card fields
// and masking PAN-like digit runs in strings.
func RedactPayload(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return MaskCardLike(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = RedactPayload(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			key := strings.ToLower(k)
			if redactedKeys[key] {
				out[k] = "[REDACTED]"
				continue
			}
			if expiryKeys[key] {
				s, _ := item.(string)
				if s != "" && len(s) >= 2 {
					out[k] = "**" + s[len(s)-2:]
				} else {
					out[k] = "[REDACTED]"
				}
				continue
			}
			out[k] = RedactPayload(item)
		}
		return out
	default:
		return value
	}
}
