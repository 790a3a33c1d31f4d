// Package controllers holds the HTTP handlers. Every handler renders HTML by
// default and JSON when the client sends Accept: application/json.
package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/pagination"
	"yatube/app/repositories"
	"yatube/app/views"
)

// Base carries what every controller needs to respond.
type Base struct {
	views  *views.Renderer
	logger *slog.Logger
}

// NewBase creates the shared controller helpers.
func NewBase(renderer *views.Renderer, logger *slog.Logger) *Base {
	return &Base{views: renderer, logger: logger}
}

// NotFound renders the custom 404 page.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		b.sendError(w, "not found", http.StatusNotFound)
		return
	}
	b.render(w, r, http.StatusNotFound, views.NotFound, map[string]any{"Path": r.URL.Path})
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["User"] = auth.Username(r.Context())

	var buf bytes.Buffer
	if err := b.views.Render(&buf, name, data); err != nil {
		b.logger.ErrorContext(r.Context(), "render failed", "template", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (b *Base) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (b *Base) sendError(w http.ResponseWriter, message string, status int) {
	b.sendJSON(w, status, map[string]string{"error": message})
}

// fail maps a service error to a response: missing records get the 404 page,
// anything else is logged and answered with 500.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		b.NotFound(w, r)
		return
	}
	b.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	if wantsJSON(r) {
		b.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func sentJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func pageNumber(r *http.Request) int {
	return pagination.ParseNumber(r.URL.Query().Get("page"))
}

// postID reads the {id} path variable. ok is false for anything that is not a
// positive integer.
func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
