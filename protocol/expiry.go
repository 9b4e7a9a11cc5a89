package protocol

import "time"

// Default TTLs by message type.
var defaultTTLs = map[string]time.Duration{
	TypeActionRecorded: 24 * time.Hour,
	TypeActionDeleted:  24 * time.Hour,
}

// FallbackTTL is used when no specific TTL is configured.
const FallbackTTL = 10 * time.Minute

// DefaultTTLFor returns the default TTL for a message type.
func DefaultTTLFor(msgType string) time.Duration {
	if ttl, ok := defaultTTLs[msgType]; ok {
		return ttl
	}
	return FallbackTTL
}

// IsExpiredHeader checks expiry using only the raw header.
func IsExpiredHeader(hdr *RawHeader) bool {
	if hdr.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().UTC().After(hdr.ExpiresAt)
}
