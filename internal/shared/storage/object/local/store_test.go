package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"tailored-cv-web/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	data := []byte("%PDF-1.4\n%fake profile\n")

	key, size, mimeType, err := store.Save(ctx, "session-1", "resume.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", mimeType)
	}
	if !strings.HasSuffix(key, "_resume.pdf") {
		t.Fatalf("unexpected storage key %s", key)
	}
	if strings.Contains(key, "session-1") {
		t.Fatalf("storage key leaks session id: %s", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../outside.pdf"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}
