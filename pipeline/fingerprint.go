package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Payload is an opaque request payload. It must carry a "topic" string; the
// remaining fields only influence the fingerprint.
type Payload map[string]interface{}

const (
	fingerprintPrefix = "analysis:"
	requestKeyPrefix  = "request:"
)

// Fingerprint derives the cache key for a payload from its canonical JSON
// form. Map keys are serialized in sorted order at every nesting level, so
// two payloads with the same logical content always produce the same key
// regardless of field insertion order.
func Fingerprint(payload Payload) string {
	// encoding/json sorts map keys recursively, which is exactly the
	// canonical form we need. Payloads are decoded JSON, so marshaling
	// cannot fail.
	canonical, _ := json.Marshal(payload)
	sum := sha256.Sum256(canonical)
	return fingerprintPrefix + hex.EncodeToString(sum[:])
}

// IsFingerprint reports whether ref is a cache key rather than a request id.
func IsFingerprint(ref string) bool {
	return len(ref) > len(fingerprintPrefix) && ref[:len(fingerprintPrefix)] == fingerprintPrefix
}
