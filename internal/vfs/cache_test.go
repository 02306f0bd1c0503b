package vfs

import (
	"bytes"
	"testing"
)

func TestBlobCache_PutGetDelete(t *testing.T) {
	c := NewBlobCache()

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("id", []byte("hello"))
	data, ok := c.Get("id")
	if !ok || !bytes.Equal(data, []byte("hello")) {
		t.Fatalf("Get after Put: got (%q, %v)", data, ok)
	}

	c.Delete("id")
	if _, ok := c.Get("id"); ok {
		t.Fatal("expected miss after Delete")
	}
}
