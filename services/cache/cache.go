package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

const maxKeyLength = 250

// Key joins parts into a memcache-safe key: no whitespace or control
// characters, at most 250 bytes (longer keys are hashed).
func Key(parts ...string) string {
	key := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, strings.Join(parts, ":"))

	if len(key) <= maxKeyLength {
		return key
	}
	sum := sha1.Sum([]byte(key))
	return parts[0] + ":" + hex.EncodeToString(sum[:])
}
