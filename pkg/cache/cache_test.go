package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/atlas/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "layout:a", []byte(`{"x":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != `{"x":1}` {
		t.Errorf("Get = %q, %v, %v, want hit", data, hit, err)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.ClearCount(ctx)
	if err != nil {
		t.Fatalf("ClearCount: %v", err)
	}
	if n != 3 {
		t.Errorf("ClearCount = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestFileCacheUsage(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	keyer := NewDefaultKeyer()

	layoutKey := keyer.LayoutKey("g1", LayoutKeyOpts{Algorithm: "tree"})
	svgKey := keyer.ArtifactKey("d1", ArtifactKeyOpts{Format: "svg"})
	pngKey := keyer.ArtifactKey("d1", ArtifactKeyOpts{Format: "png"})
	for key, data := range map[string]string{layoutKey: "12345", svgKey: "<svg/>", pngKey: "png"} {
		if err := c.Set(ctx, key, []byte(data), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "artifact:stale", []byte("old"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	got, err := c.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	want := []KindUsage{
		{Kind: "artifact", Entries: 3, Bytes: 9, Expired: 1},
		{Kind: "layout", Entries: 1, Bytes: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("Usage = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Usage[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestKeyKind(t *testing.T) {
	tests := []struct{ key, want string }{
		{"layout:v1:tree:abc", "layout"},
		{"artifact:v1:svg:abc", "artifact"},
		{"plain", "other"},
		{":leading", "other"},
	}
	for _, tt := range tests {
		if got := KeyKind(tt.key); got != tt.want {
			t.Errorf("KeyKind(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := LayoutKeyOpts{Algorithm: "radial", Config: map[string]float32{"level_separation": 80}}
	lk := k.LayoutKey("hash123", base)
	if !strings.HasPrefix(lk, "layout:v1:radial:") {
		t.Errorf("LayoutKey = %s, want layout:v1:radial: prefix", lk)
	}
	if lk != k.LayoutKey("hash123", base) {
		t.Error("LayoutKey should be deterministic")
	}

	variants := []struct {
		name string
		hash string
		opts LayoutKeyOpts
	}{
		{"graph", "hash456", base},
		{"algorithm", "hash123", LayoutKeyOpts{Algorithm: "tree", Config: base.Config}},
		{"root", "hash123", LayoutKeyOpts{Algorithm: "radial", Root: "a", Config: base.Config}},
		{"config", "hash123", LayoutKeyOpts{Algorithm: "radial", Config: map[string]float32{"level_separation": 40}}},
	}
	for _, v := range variants {
		if k.LayoutKey(v.hash, v.opts) == lk {
			t.Errorf("changing %s should change the layout key", v.name)
		}
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Engine: "neato"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot", Engine: "neato"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{Algorithm: "tree"})
	if !strings.HasPrefix(key, "staging:layout:v1:tree:") {
		t.Errorf("ScopedKeyer LayoutKey = %s, want staging: prefix", key)
	}

	// Nil inner falls back to DefaultKeyer.
	scoped = NewScopedKeyer(nil, "p:")
	if got, want := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}),
		"p:"+NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); got != want {
		t.Errorf("ArtifactKey = %s, want %s", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err = %v, calls = %d, want nil, 1", err, calls)
	}

	calls = 0
	permanent := errors.New("bad request")
	if err := RetryWithBackoff(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("permanent: err = %v, calls = %d, want %v, 1", err, calls, permanent)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err = %v, calls = %d, want nil, 2", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d, want ErrUnavailable, 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string)            { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)           { h.misses++ }
func (h *countingHooks) OnCacheSet(_ context.Context, _ string, n int) { h.bytes += n }

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := Instrument(fc, "layout")

	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("12345"), 0)
	c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.bytes != 5 {
		t.Errorf("hooks = %d hits, %d misses, %d bytes, want 1, 1, 5", hooks.hits, hooks.misses, hooks.bytes)
	}

	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "k"); hit {
		t.Error("Clear through the wrapper should reach the file cache")
	}
}

type labelHooks struct{ labels []string }

func (h *labelHooks) OnCacheHit(_ context.Context, k string)        { h.labels = append(h.labels, k) }
func (h *labelHooks) OnCacheMiss(_ context.Context, k string)       { h.labels = append(h.labels, k) }
func (h *labelHooks) OnCacheSet(_ context.Context, k string, _ int) {}

func TestInstrumentKeyPrefix(t *testing.T) {
	hooks := &labelHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := Instrument(NewNullCache(), "")
	keyer := NewDefaultKeyer()

	c.Get(ctx, keyer.LayoutKey("g", LayoutKeyOpts{Algorithm: "tree"}))
	c.Get(ctx, keyer.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}))
	c.Get(ctx, "bare")

	want := []string{"layout", "artifact", "other"}
	if len(hooks.labels) != len(want) {
		t.Fatalf("labels = %v, want %v", hooks.labels, want)
	}
	for i := range want {
		if hooks.labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, hooks.labels[i], want[i])
		}
	}
}
