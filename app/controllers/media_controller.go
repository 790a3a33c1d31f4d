package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"yatube/app/blobs"
)

// MediaController serves uploaded images.
type MediaController struct {
	*Base
	images blobs.Store
}

// NewMediaController creates a new MediaController
func NewMediaController(base *Base, images blobs.Store) *MediaController {
	return &MediaController{Base: base, images: images}
}

// Serve streams the blob named by the {key} path variable.
func (mc *MediaController) Serve(w http.ResponseWriter, r *http.Request) {
	key, err := blobs.CleanKey(mux.Vars(r)["key"])
	if err != nil {
		mc.NotFound(w, r)
		return
	}
	body, obj, err := mc.images.Open(r.Context(), key)
	if errors.Is(err, blobs.ErrNotFound) {
		mc.NotFound(w, r)
		return
	}
	if err != nil {
		mc.fail(w, r, err)
		return
	}
	defer body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, body); err != nil {
		mc.logger.WarnContext(r.Context(), "media copy interrupted", "key", obj.Key, "err", err)
	}
}
