package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		c := NewMemoryCache()
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

	t.Run("Expiry", func(t *testing.T) {
		c := NewMemoryCache()
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
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		c.Set(ctx, "key", []byte("value"), 0)
		if err := c.Delete(ctx, "key"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, hit, _ := c.Get(ctx, "key")
		if hit {
			t.Error("expected miss after delete")
		}
	})

	t.Run("CopiesData", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		buf := []byte("value")
		c.Set(ctx, "key", buf, 0)
		buf[0] = 'X'

		data, _, _ := c.Get(ctx, "key")
		if string(data) != "value" {
			t.Errorf("data = %q, caller mutation leaked into cache", data)
		}
	})
}
