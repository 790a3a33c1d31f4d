package controllers

import (
	"encoding/json"
	"net/http"

	"yatube/app/auth"
	"yatube/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	*Base
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(base *Base, comments *services.CommentService) *CommentController {
	return &CommentController{Base: base, comments: comments}
}

// Create adds a comment and always returns to the post. An empty comment is
// dropped without a message.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		cc.NotFound(w, r)
		return
	}

	var text string
	if sentJSON(r) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			cc.sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = body.Text
	} else {
		text = r.FormValue("text")
	}

	ctx := r.Context()
	comment, err := cc.comments.AddComment(ctx, auth.Username(ctx), id, text)
	if verr, ok := services.AsValidationError(err); ok {
		if wantsJSON(r) {
			cc.sendJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
			return
		}
		redirect(w, r, postURL(id))
		return
	}
	if err != nil {
		cc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		cc.sendJSON(w, http.StatusCreated, comment)
		return
	}
	redirect(w, r, postURL(id))
}
