// Package privacy derives correlation tokens from client network identity
// without keeping the raw address.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UnknownAddress is used when no address header is present.
const UnknownAddress = "unknown"

// DefaultTrustedHeader is the header set by the fronting proxy with the
// connecting client's address.
const DefaultTrustedHeader = "CF-Connecting-IP"

// ClientAddress picks the best available client address from request headers:
// the trusted proxy header, then the first X-Forwarded-For entry, then
// UnknownAddress. header is typically http.Header.Get.
func ClientAddress(header func(string) string, trustedHeader string) string {
	if trustedHeader != "" {
		if ip := strings.TrimSpace(header(trustedHeader)); ip != "" {
			return ip
		}
	}
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return UnknownAddress
}

// HashIdentity returns the lowercase hex SHA-256 of "address:salt".
// The result is stable for a given pair and is the only form of the client
// address that may be stored. Rotating the salt severs correlation with all
// previously stored hashes.
func HashIdentity(address, salt string) string {
	sum := sha256.Sum256([]byte(address + ":" + salt))
	return hex.EncodeToString(sum[:])
}
