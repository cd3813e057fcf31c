package docstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	body := "trade license scan"
	if err := s.Put(ctx, "ver_1/doc_1", "license.pdf", "application/pdf", int64(len(body)), strings.NewReader(body)); err != nil {
		t.Fatalf("put: %v", err)
	}

	obj, err := s.Get(ctx, "ver_1/doc_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer obj.Body.Close()

	if obj.Name != "license.pdf" || obj.ContentType != "application/pdf" || obj.Size != int64(len(body)) {
		t.Fatalf("metadata lost: %+v", obj)
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != body {
		t.Fatalf("content lost: %q", data)
	}
}

func TestMemoryGetMissingReturnsNotFound(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutRejectsSizeMismatch(t *testing.T) {
	s := NewMemory()
	err := s.Put(context.Background(), "k", "f.txt", "text/plain", 99, strings.NewReader("short"))
	if err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Put(ctx, "k", "f.txt", "text/plain", 4, strings.NewReader("body")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should report ErrNotFound, got %v", err)
	}
}
