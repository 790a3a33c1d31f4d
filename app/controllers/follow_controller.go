package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/services"
)

// FollowController changes follow edges.
type FollowController struct {
	*Base
	follows *services.FollowService
}

// NewFollowController creates a new FollowController
func NewFollowController(base *Base, follows *services.FollowService) *FollowController {
	return &FollowController{Base: base, follows: follows}
}

// Follow subscribes the current user to the author and returns to the profile.
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author := mux.Vars(r)["username"]
	following, err := fc.follows.Follow(ctx, auth.Username(ctx), author)
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, map[string]any{"author": author, "following": following})
		return
	}
	redirect(w, r, profileURL(author))
}

// Unfollow removes the subscription and returns to the profile.
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author := mux.Vars(r)["username"]
	if err := fc.follows.Unfollow(ctx, auth.Username(ctx), author); err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, map[string]any{"author": author, "following": false})
		return
	}
	redirect(w, r, profileURL(author))
}
