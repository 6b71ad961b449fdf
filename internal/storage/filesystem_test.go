package storage

import (
	"context"
	"errors"
	"testing"
)

func TestProfilePhotoKeyDeterministic(t *testing.T) {
	a, err := ProfilePhotoKey("u1", "image/png")
	if err != nil {
		t.Fatalf("ProfilePhotoKey error: %v", err)
	}
	b, err := ProfilePhotoKey("u1", "image/png")
	if err != nil {
		t.Fatalf("ProfilePhotoKey error: %v", err)
	}
	if a != b || a != "users/u1/profile.png" {
		t.Fatalf("key not deterministic: %q vs %q", a, b)
	}
}

func TestProfilePhotoKeyRejectsNonImage(t *testing.T) {
	if _, err := ProfilePhotoKey("u1", "application/pdf"); !errors.Is(err, ErrUnsupportedPhotoType) {
		t.Fatalf("expected ErrUnsupportedPhotoType, got %v", err)
	}
}

func TestFileStoreWriteOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	ctx := context.Background()
	key := "users/u1/profile.png"
	if _, err := store.Write(ctx, key, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := store.Write(ctx, key, []byte("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("overwrite failed: %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.txt", []byte("x")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}
