package storage

import (
	"io"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key, err := store.Put("materials/l1/doc.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := store.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Fatalf("got %q", body)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(key); err == nil {
		t.Fatalf("deleted blob should not be readable")
	}
}

func TestFSStoreRejectsEmptyKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Put("", strings.NewReader("x")); err == nil {
		t.Fatalf("empty key must be rejected")
	}
	if err := store.Delete(""); err == nil {
		t.Fatalf("empty key must be rejected")
	}
}
