package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key(BucketFactChecks, "the claim text", "https://src")
	b := Key(BucketFactChecks, "the claim text", "https://src")
	if a != b {
		t.Errorf("Expected identical keys, got %q and %q", a, b)
	}
}

func TestKey_DistinguishesBucketsAndParts(t *testing.T) {
	base := Key(BucketFactChecks, "claim")
	if base == Key(BucketExtracted, "claim") {
		t.Error("Expected different buckets to produce different keys")
	}
	if base == Key(BucketFactChecks, "claim", "extra") {
		t.Error("Expected different parts to produce different keys")
	}
	// Joined parts must not collide with a single concatenated part
	if Key(BucketFactChecks, "ab", "c") == Key(BucketFactChecks, "a", "bc") {
		t.Error("Expected part boundaries to matter")
	}
}

func TestKey_HidesInput(t *testing.T) {
	key := Key(BucketFactChecks, "sensitive claim contents")
	if strings.Contains(key, "sensitive") {
		t.Errorf("Expected input hashed out of key, got %q", key)
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Errorf("Expected v, got %q (found=%v)", got, found)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := Key(BucketExtracted, "https://example.com/article")
	if err := c.Set(key, []byte("article text"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get(key)
	if !found || string(got) != "article text" {
		t.Errorf("Expected article text, got %q (found=%v)", got, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected entry gone after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to be dropped")
	}
}

func TestLayeredCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	_ = layered.Set("k", []byte("v"), time.Minute)

	// A fresh layered cache over the same dir has a cold memory layer
	// and must fall through to disk.
	fresh := NewLayeredCache(time.Minute, dir, time.Minute)
	got, found := fresh.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", got, found)
	}
}

func TestLayeredCache_MemoryOnly(t *testing.T) {
	layered := NewLayeredCache(time.Minute, "", time.Minute)

	_ = layered.Set("k", []byte("v"), time.Minute)
	if got, found := layered.Get("k"); !found || string(got) != "v" {
		t.Errorf("Expected memory hit, got %q (found=%v)", got, found)
	}
	if err := layered.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := layered.Get("k"); found {
		t.Error("Expected cache empty after clear")
	}
}

func TestTTLs_For(t *testing.T) {
	ttls := DefaultTTLs()
	if ttls.For(BucketFactChecks) != 24*time.Hour {
		t.Errorf("Unexpected fact-check TTL: %v", ttls.For(BucketFactChecks))
	}
	if ttls.For(BucketNews) != time.Hour {
		t.Errorf("Unexpected news TTL: %v", ttls.For(BucketNews))
	}
}
