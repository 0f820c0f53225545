package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("len = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	m1 := k.ManifestKey("s1", "m1", ManifestKeyOpts{Action: "update"})
	if !strings.HasPrefix(m1, "manifest:") {
		t.Errorf("ManifestKey = %q", m1)
	}
	tests := []struct {
		name string
		key  string
	}{
		{"OtherScene", k.ManifestKey("s2", "m1", ManifestKeyOpts{Action: "update"})},
		{"OtherManifest", k.ManifestKey("s1", "m2", ManifestKeyOpts{Action: "update"})},
		{"OtherAction", k.ManifestKey("s1", "m1", ManifestKeyOpts{Action: "construct-default"})},
		{"OtherRequester", k.ManifestKey("s1", "m1", ManifestKeyOpts{Action: "update", Requester: "editor"})},
	}
	for _, tt := range tests {
		if tt.key == m1 {
			t.Errorf("%s: key should differ", tt.name)
		}
	}
	if m1 != k.ManifestKey("s1", "m1", ManifestKeyOpts{Action: "update"}) {
		t.Error("ManifestKey should be deterministic")
	}

	r1 := k.RenderKey("s1", RenderKeyOpts{Format: "svg"})
	r2 := k.RenderKey("s1", RenderKeyOpts{Format: "dot"})
	r3 := k.RenderKey("s1", RenderKeyOpts{Format: "svg", Highlight: []string{"mesh1:colors"}})
	if !strings.HasPrefix(r1, "render:") || r1 == r2 || r1 == r3 {
		t.Errorf("RenderKey collisions: %q %q %q", r1, r2, r3)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "project:a:")

	want := "project:a:" + inner.ManifestKey("s", "m", ManifestKeyOpts{})
	if got := k.ManifestKey("s", "m", ManifestKeyOpts{}); got != want {
		t.Errorf("ManifestKey = %q, want %q", got, want)
	}
	want = "project:a:" + inner.RenderKey("s", RenderKeyOpts{Format: "svg"})
	if got := k.RenderKey("s", RenderKeyOpts{Format: "svg"}); got != want {
		t.Errorf("RenderKey = %q, want %q", got, want)
	}

	if NewScopedKeyer(nil, "x:").RenderKey("s", RenderKeyOpts{}) != "x:"+inner.RenderKey("s", RenderKeyOpts{}) {
		t.Error("nil inner should fall back to the default keyer")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("wrapped error should be retryable")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("Retryable should unwrap to the cause")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("bare error should not be retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = 250 * time.Millisecond }()
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, 3, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("transient failures: err=%v calls=%d", err, calls)
	}

	calls = 0
	permanent := errors.New("bad auth")
	err = RetryWithBackoff(ctx, 3, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("permanent failure: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, 2, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 2 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, 5, func() error { return Retryable(ErrUnavailable) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisOptions{URL: "http://localhost:6379"})
	if err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
