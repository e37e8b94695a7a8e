package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lanblog/apiserver/internal/storage"
)

// MediaHandler streams stored images back to the browser.
type MediaHandler struct {
	media *storage.Storage
}

func NewMediaHandler(media *storage.Storage) *MediaHandler {
	return &MediaHandler{media: media}
}

// MediaRouter registers the media read-through route.
func MediaRouter(r chi.Router, media *storage.Storage) {
	handler := NewMediaHandler(media)
	r.Get("/*", handler.GetObject)
}

func (h *MediaHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid media key")
		return
	}

	object, err := h.media.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	defer object.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, object); err != nil {
		return
	}
}
