package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/services"
	"yatube/app/views"
)

const (
	indexTitle  = "Последние обновления на сайте"
	followTitle = "Подписки"
)

// FeedController serves the paginated post lists.
type FeedController struct {
	*Base
	feed *services.FeedService
}

// NewFeedController creates a new FeedController
func NewFeedController(base *Base, feed *services.FeedService) *FeedController {
	return &FeedController{Base: base, feed: feed}
}

// Index lists every post, newest first.
func (fc *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := fc.feed.ListAll(r.Context(), pageNumber(r))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, page)
		return
	}
	fc.render(w, r, http.StatusOK, views.Index, map[string]any{"Title": indexTitle, "Page": page})
}

// GroupPosts lists the posts of one group.
func (fc *FeedController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := fc.feed.ListByGroup(r.Context(), mux.Vars(r)["slug"], pageNumber(r))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, feed)
		return
	}
	fc.render(w, r, http.StatusOK, views.GroupList, map[string]any{"Group": feed.Group, "Page": feed.Page})
}

// Profile lists an author's posts with follow information.
func (fc *FeedController) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := fc.feed.ListByAuthor(ctx, mux.Vars(r)["username"], auth.Username(ctx), pageNumber(r))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, profile)
		return
	}
	fc.render(w, r, http.StatusOK, views.Profile, map[string]any{"Profile": profile})
}

// FollowIndex lists posts by the authors the current user follows.
func (fc *FeedController) FollowIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := fc.feed.ListFollowed(ctx, auth.Username(ctx), pageNumber(r))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		fc.sendJSON(w, http.StatusOK, page)
		return
	}
	fc.render(w, r, http.StatusOK, views.Follow, map[string]any{"Title": followTitle, "Page": page})
}
