package portfolio

import (
	"testing"
	"time"
)

func newClockedCache() (*PageCache, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPageCache()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestPageCacheExpires(t *testing.T) {
	c, now := newClockedCache()
	c.Set("k", []byte("v"), time.Minute)

	if b, ok := c.Get("k"); !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v", b, ok)
	}
	*now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, len=%d", c.Len())
	}
}

func TestPageCacheZeroTTLNotStored(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("k", []byte("v"), 0)
	if c.Len() != 0 {
		t.Fatal("zero ttl should not be cached")
	}
}

func TestPageCacheRevalidateByPath(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("blogs", []byte("1"), time.Hour, "/dashboard/blogs", "/blogs")
	c.Set("projects", []byte("2"), time.Hour, "/dashboard/projects", "/projects")
	c.Set("categories", []byte("3"), time.Hour, "/dashboard/categories", "/blogs")

	c.Revalidate("/blogs")

	if _, ok := c.Get("blogs"); ok {
		t.Error("blogs entry should be dropped")
	}
	if _, ok := c.Get("categories"); ok {
		t.Error("categories entry shares /blogs and should be dropped")
	}
	if _, ok := c.Get("projects"); !ok {
		t.Error("projects entry should survive")
	}
	if len(c.byTag["/blogs"]) != 0 {
		t.Error("tag index not cleaned up")
	}
}

func TestPageCacheSetReplacesTags(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("k", []byte("old"), time.Hour, "/a")
	c.Set("k", []byte("new"), time.Hour, "/b")

	c.Revalidate("/a")
	if b, ok := c.Get("k"); !ok || string(b) != "new" {
		t.Fatalf("stale tag removed the replaced entry: %q %v", b, ok)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("a", []byte("1"), time.Hour)
	c.Set("b", []byte("2"), time.Hour)
	c.Invalidate()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, len=%d", c.Len())
	}
}
