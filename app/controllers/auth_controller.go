package controllers

import (
	"net/http"
	"strings"

	"yatube/app/auth"
)

// AuthController issues the Basic authentication challenge.
type AuthController struct {
	*Base
}

// NewAuthController creates a new AuthController
func NewAuthController(base *Base) *AuthController {
	return &AuthController{Base: base}
}

// Login challenges anonymous clients and sends authenticated ones on to next.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	author := auth.FromContext(r.Context())
	if author == nil {
		w.Header().Set("WWW-Authenticate", `Basic realm="`+auth.Realm+`", charset="UTF-8"`)
		if wantsJSON(r) {
			ac.sendError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if wantsJSON(r) {
		ac.sendJSON(w, http.StatusOK, map[string]string{"username": author.Username})
		return
	}
	redirect(w, r, safeNext(r.URL.Query().Get("next")))
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	return next
}
