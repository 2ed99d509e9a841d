package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		c, err := NewFileCache(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileCache: %v", err)
		}
		defer c.Close()

		if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, hit, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !hit {
			t.Fatal("expected hit")
		}
		if string(data) != "value" {
			t.Errorf("data = %q, want value", data)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		c, _ := NewFileCache(t.TempDir())
		defer c.Close()

		_, hit, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if hit {
			t.Error("expected miss")
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		c, _ := NewFileCache(t.TempDir())
		defer c.Close()

		if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(5 * time.Millisecond)

		_, hit, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if hit {
			t.Error("expired entry should miss")
		}
	})

	t.Run("NoExpiry", func(t *testing.T) {
		c, _ := NewFileCache(t.TempDir())
		defer c.Close()

		if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		_, hit, _ := c.Get(ctx, "key")
		if !hit {
			t.Error("zero-TTL entry should never expire")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c, _ := NewFileCache(t.TempDir())
		defer c.Close()

		_ = c.Set(ctx, "key", []byte("value"), 0)
		if err := c.Delete(ctx, "key"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "key"); hit {
			t.Error("deleted entry should miss")
		}
		// Deleting again is not an error.
		if err := c.Delete(ctx, "key"); err != nil {
			t.Errorf("second Delete: %v", err)
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("null cache should never hit")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	t.Run("Deterministic", func(t *testing.T) {
		a := k.MetadataKey("https://services.odata.org/V4/Northwind")
		b := k.MetadataKey("https://services.odata.org/V4/Northwind")
		if a != b {
			t.Error("same input produced different keys")
		}
	})

	t.Run("DistinctInputs", func(t *testing.T) {
		a := k.MetadataKey("https://a.example")
		b := k.MetadataKey("https://b.example")
		if a == b {
			t.Error("different URLs produced the same key")
		}
	})

	t.Run("OptionsInfluenceLayoutKey", func(t *testing.T) {
		a := k.LayoutKey("hash", LayoutKeyOpts{DefaultWidth: 250})
		b := k.LayoutKey("hash", LayoutKeyOpts{DefaultWidth: 300})
		if a == b {
			t.Error("options should change the key")
		}
	})

	t.Run("ClassPrefixes", func(t *testing.T) {
		if !strings.HasPrefix(k.MetadataKey("u"), "metadata:") {
			t.Error("metadata key missing prefix")
		}
		if !strings.HasPrefix(k.QueryKey("u", "q"), "query:") {
			t.Error("query key missing prefix")
		}
	})
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant1:")

	got := scoped.MetadataKey("https://a.example")
	want := "tenant1:" + inner.MetadataKey("https://a.example")
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.QueryKey("u", "q"), "p:query:") {
		t.Error("nil inner should default")
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("data"))
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if a != Hash([]byte("data")) {
		t.Error("hash not deterministic")
	}
	if a == Hash([]byte("other")) {
		t.Error("different data produced same hash")
	}
}
