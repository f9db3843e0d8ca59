package feature

import (
	"encoding/hex"
	"strings"
)

// decodeHex decodes an optionally 0x-prefixed hex string.
func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
