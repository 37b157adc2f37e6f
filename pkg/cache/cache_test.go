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
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "mappings"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on empty cache should miss")
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v; want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v; want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
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
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if data, hit, _ := c.Get(ctx, "c"); !hit || string(data) != "3" {
		t.Errorf("Get(c) = %q, %v", data, hit)
	}

	_ = c.Set(ctx, "ttl", []byte("x"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "ttl"); hit {
		t.Error("expired entry should miss")
	}
}

func TestMemoryCacheCopiesInput(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'
	data, _, _ := c.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("stored value mutated: %q", data)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashKeyBoundaries(t *testing.T) {
	if hashKey("mapping", "ab", "c") == hashKey("mapping", "a", "bc") {
		t.Error("part boundaries should change the key")
	}
	if k := hashKey("mapping", "x"); !strings.HasPrefix(k, "mapping:") {
		t.Errorf("key %q lacks prefix", k)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.MappingKey("abc", MappingKeyOpts{Exclude: []string{"google-collect-"}})
	k2 := k.MappingKey("abc", MappingKeyOpts{})
	if k1 == k2 {
		t.Error("different exclusion policies should produce different keys")
	}

	k3 := k.MappingKey("abc", MappingKeyOpts{Exclude: []string{"b-", "a-"}})
	k4 := k.MappingKey("abc", MappingKeyOpts{Exclude: []string{"a-", "b-"}})
	if k3 != k4 {
		t.Error("exclusion order should not change the key")
	}

	if k.MappingKey("abc", MappingKeyOpts{}) == k.MappingKey("abd", MappingKeyOpts{}) {
		t.Error("different graph hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "com.example:")
	key := scoped.MappingKey("abc", MappingKeyOpts{})
	want := "com.example:" + NewDefaultKeyer().MappingKey("abc", MappingKeyOpts{})
	if key != want {
		t.Errorf("ScopedKeyer key = %s, want %s", key, want)
	}
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)

	calls := 0
	compute := func(v *map[string][]string) func() error {
		return func() error {
			calls++
			*v = map[string][]string{"a": {"b"}}
			return nil
		}
	}

	var first map[string][]string
	hit, err := Cached(ctx, c, "mapping", "k", 0, &first, compute(&first))
	if err != nil || hit {
		t.Fatalf("first Cached = %v, %v; want miss", hit, err)
	}

	var second map[string][]string
	hit, err = Cached(ctx, c, "mapping", "k", 0, &second, compute(&second))
	if err != nil || !hit {
		t.Fatalf("second Cached = %v, %v; want hit", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if len(second["a"]) != 1 || second["a"][0] != "b" {
		t.Errorf("decoded value = %v", second)
	}
}

func TestCachedComputeError(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)
	boom := errors.New("boom")

	var v []string
	_, err := Cached(ctx, c, "mapping", "k", 0, &v, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed compute must not populate the cache")
	}
}

func TestPresence(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gdata-src.java-1.41.1")
	p := NewPresence("archive", true)

	calls := 0
	compute := func(context.Context) error {
		calls++
		return os.MkdirAll(dir, 0o755)
	}

	hit, err := p.LookupOrCompute(ctx, dir, compute)
	if err != nil || hit {
		t.Fatalf("first call = %v, %v; want miss", hit, err)
	}
	hit, err = p.LookupOrCompute(ctx, dir, compute)
	if err != nil || !hit {
		t.Fatalf("second call = %v, %v; want hit", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestPresenceNotProduced(t *testing.T) {
	p := NewPresence("analysis", false)
	path := filepath.Join(t.TempDir(), "dependencies.dot")

	_, err := p.LookupOrCompute(context.Background(), path, func(context.Context) error { return nil })
	if !errors.Is(err, ErrNotProduced) {
		t.Errorf("err = %v, want ErrNotProduced", err)
	}
}

func TestPresenceDirRequiresDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if NewPresence("archive", true).Exists(path) {
		t.Error("a regular file should not satisfy a directory entry")
	}
	if !NewPresence("archive", false).Exists(path) {
		t.Error("a regular file should satisfy a file entry")
	}
}

func TestPresenceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := NewPresence("archive", false).LookupOrCompute(ctx, filepath.Join(t.TempDir(), "x"), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Error("compute should not run on a cancelled context")
	}
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		want    any
	}{
		{"", &FileCache{}},
		{BackendFile, &FileCache{}},
		{BackendMemory, &MemoryCache{}},
		{BackendNone, &NullCache{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := New(ctx, Options{Backend: tt.backend, Dir: t.TempDir()})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer c.Close()
			switch tt.want.(type) {
			case *FileCache:
				if _, ok := c.(*FileCache); !ok {
					t.Errorf("got %T, want *FileCache", c)
				}
			case *MemoryCache:
				if _, ok := c.(*MemoryCache); !ok {
					t.Errorf("got %T, want *MemoryCache", c)
				}
			case *NullCache:
				if _, ok := c.(*NullCache); !ok {
					t.Errorf("got %T, want *NullCache", c)
				}
			}
		})
	}

	if _, err := New(ctx, Options{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend err = %v", err)
	}
}
