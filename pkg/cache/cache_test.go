package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mvollan/stirlingforge/pkg/params"
	"github.com/mvollan/stirlingforge/pkg/units"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "stage:derived:abc", []byte(`{"x":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "stage:derived:abc")
	if err != nil || !hit {
		t.Fatalf("Get = %v, hit=%v", err, hit)
	}
	if string(data) != `{"x":1}` {
		t.Errorf("got %q", data)
	}

	if err := c.Delete(ctx, "stage:derived:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "stage:derived:abc"); hit {
		t.Error("deleted key should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	// Negative TTL means no expiration metadata is written at all.
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("ttl <= 0 should mean no expiration")
	}

	if err := c.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("hash length should be 64, got %d", len(h1))
	}
}

func TestParamsHashOrderIndependent(t *testing.T) {
	a := params.NewRegistry()
	if _, err := a.Register("power_bore", 12, units.Length, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Register("power_stroke", 16, units.Length, nil); err != nil {
		t.Fatal(err)
	}

	b := params.NewRegistry()
	if _, err := b.Register("power_stroke", 16, units.Length, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Register("power_bore", 12, units.Length, nil); err != nil {
		t.Fatal(err)
	}

	if ParamsHash(a) != ParamsHash(b) {
		t.Error("registration order must not change the parameter hash")
	}

	if _, err := b.Register("scatter_gap", 15, units.Length, nil); err != nil {
		t.Fatal(err)
	}
	if ParamsHash(a) == ParamsHash(b) {
		t.Error("different parameter sets must hash differently")
	}
}

func TestStageKey(t *testing.T) {
	k1 := StageKey("derived", "abc")
	k2 := StageKey("layout", "abc")
	if k1 == k2 {
		t.Error("different stages should produce different keys")
	}
	if k1 != "stage:derived:abc" {
		t.Errorf("StageKey unexpected: %s", k1)
	}
}
