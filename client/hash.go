package client

import (
	"encoding/hex"
	"strings"

	"github.com/ffenix113/smp-tool/smp"
)

// DecodeHashHex normalises a user-supplied hash string: it strips every
// non-hex character, requires exactly 64 hex digits to remain, and
// decodes the result to 32 raw bytes. Mixed case is accepted.
func DecodeHashHex(s string) ([]byte, error) {
	var filtered strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			filtered.WriteRune(r)
		}
	}

	digits := filtered.String()
	if len(digits) != 64 {
		return nil, &smp.HashHexLengthMismatch{Expected: 64, Got: len(digits)}
	}

	return hex.DecodeString(digits)
}
