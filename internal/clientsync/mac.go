package clientsync

import (
	"errors"
	"strings"
)

var errInvalidMAC = errors.New("invalid hardware address")

// NormalizeMAC canonicalizes a hardware address to lower-case, colon
// delimited form regardless of the separator style the gateway reports.
func NormalizeMAC(raw string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer(":", "", "-", "", ".", "").Replace(cleaned)
	if len(cleaned) != 12 {
		return "", errInvalidMAC
	}
	for _, r := range cleaned {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", errInvalidMAC
		}
	}

	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(cleaned[i : i+2])
	}
	return b.String(), nil
}
