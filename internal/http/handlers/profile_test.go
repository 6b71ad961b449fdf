package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"studio/internal/middleware"
	"studio/internal/storage"
)

func profileRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/profile/photo", app.ProfilePhotoUpload)
	return r
}

func multipartPhoto(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.bin"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestProfilePhotoUpload(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	users := newFakeUserRepo()
	app := &App{Users: users, Store: store, Logger: zerolog.Nop()}
	router := profileRouter(app)

	body, contentType := multipartPhoto(t, "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profile/photo", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	wantKey := "users/user-1/profile.png"
	if users.photoKey["user-1"] != wantKey {
		t.Fatalf("photo key = %q, want %q", users.photoKey["user-1"], wantKey)
	}

	stored, err := store.Read(req.Context(), wantKey)
	if err != nil {
		t.Fatalf("read stored photo: %v", err)
	}
	if string(stored) != "png-bytes" {
		t.Fatalf("stored photo = %q", stored)
	}
}

func TestProfilePhotoUploadOverwrites(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	users := newFakeUserRepo()
	app := &App{Users: users, Store: store, Logger: zerolog.Nop()}
	router := profileRouter(app)

	for _, payload := range []string{"first", "second"} {
		body, contentType := multipartPhoto(t, "image/png", []byte(payload))
		req := httptest.NewRequest(http.MethodPost, "/v1/profile/photo", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d for payload %q", rec.Code, payload)
		}
	}

	stored, err := store.Read(context.Background(), "users/user-1/profile.png")
	if err != nil {
		t.Fatalf("read stored photo: %v", err)
	}
	if string(stored) != "second" {
		t.Fatalf("stored photo = %q, want second", stored)
	}
}

func TestProfilePhotoUploadRejectsNonImage(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	app := &App{Users: newFakeUserRepo(), Store: store, Logger: zerolog.Nop()}
	router := profileRouter(app)

	body, contentType := multipartPhoto(t, "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profile/photo", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}
