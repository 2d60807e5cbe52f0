// Package cache is the layered response cache. It stores serialized API
// responses keyed by input, split into buckets whose TTLs mirror the
// backend's own cache windows so client and server expire together.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Bucket namespaces cached responses by kind
type Bucket string

const (
	BucketFactChecks Bucket = "fact_checks"
	BucketExtracted  Bucket = "extracted_content"
	BucketNews       Bucket = "news_feed"
)

// TTLs holds the per-bucket expiry windows
type TTLs struct {
	FactChecks time.Duration
	Extracted  time.Duration
	News       time.Duration
}

// DefaultTTLs match the backend cache configuration.
func DefaultTTLs() TTLs {
	return TTLs{
		FactChecks: 24 * time.Hour,
		Extracted:  6 * time.Hour,
		News:       time.Hour,
	}
}

// For returns the TTL for a bucket.
func (t TTLs) For(bucket Bucket) time.Duration {
	switch bucket {
	case BucketFactChecks:
		return t.FactChecks
	case BucketExtracted:
		return t.Extracted
	case BucketNews:
		return t.News
	default:
		return time.Hour
	}
}

// Key generates a stable cache key from a bucket and input parts.
// Inputs are hashed, so claim text never appears in key material.
func Key(bucket Bucket, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "veridex:v1:" + string(bucket) + ":" + hex.EncodeToString(hash[:])
}
