package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/beltwright/pkg/cache"
	"github.com/matzehuels/beltwright/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/beltwright
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "beltwright")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestXDGOverrides(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"cache", cacheDir, filepath.Join(base, "cache", appName)},
		{"config", configDir, filepath.Join(base, "config", appName)},
		{"data", dataDir, filepath.Join(base, "data", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("dir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataDirFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", "beltwright")) {
		t.Errorf("dataDir() = %q, want it under .local/share", dir)
	}
}

func TestFileCacheDir(t *testing.T) {
	got, err := fileCacheDir("/tmp/explicit")
	if err != nil || got != "/tmp/explicit" {
		t.Errorf("fileCacheDir(explicit) = %q, %v", got, err)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	got, err = fileCacheDir("")
	if err != nil || got != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("fileCacheDir(\"\") = %q, %v", got, err)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	c, err := newCache(ctx, config.CacheConfig{Backend: "file", Dir: t.TempDir()}, true)
	if err != nil {
		t.Fatalf("newCache(noCache) error: %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("noCache should give a NullCache, got %T", c)
	}

	c, err = newCache(ctx, config.CacheConfig{Backend: "none"}, false)
	if err != nil {
		t.Fatalf("newCache(none) error: %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("backend none should give a NullCache, got %T", c)
	}

	dir := t.TempDir()
	c, err = newCache(ctx, config.CacheConfig{Backend: "file", Dir: dir}, false)
	if err != nil {
		t.Fatalf("newCache(file) error: %v", err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("backend file should give a FileCache, got %T", c)
	}
	if fc.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
	}
}
