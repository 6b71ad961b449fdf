package handlers

import (
	"errors"
	"io"
	"net/http"

	"studio/internal/storage"
)

func (a *App) ProfilePhotoUpload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxProfilePhotoBytes)
	if err := r.ParseMultipartForm(storage.MaxProfilePhotoBytes); err != nil {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "photo exceeds the 2 MiB limit")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "photo file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxProfilePhotoBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read photo")
		return
	}
	if len(data) > storage.MaxProfilePhotoBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "photo exceeds the 2 MiB limit")
		return
	}

	mime := header.Header.Get("Content-Type")
	key, err := storage.ProfilePhotoKey(userID, mime)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedPhotoType) {
			a.error(w, http.StatusUnsupportedMediaType, "unsupported_type", "photo must be an image")
			return
		}
		a.serviceError(w, r, err)
		return
	}

	// Same key per user: re-uploads silently replace the previous photo.
	if _, err := a.Store.Write(r.Context(), key, data); err != nil {
		a.serviceError(w, r, err)
		return
	}
	if err := a.Users.UpdatePhotoKey(r.Context(), userID, key); err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]string{"photo_key": key})
}

func (a *App) ProfileGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"locale":    user.Locale,
		"photo_key": user.PhotoKey,
	})
}
