package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"
)

const (
	createHeader = "Добавить запись"
	editHeader   = "Редактировать запись"

	// detailTitleCut is how much post text the detail page title shows.
	detailTitleCut = 30

	maxFormMemory = 8 << 20
)

// GroupLister supplies the choices for the group field.
type GroupLister interface {
	ListGroups() ([]*models.Group, error)
}

// PostController handles HTTP requests for blog posts
type PostController struct {
	*Base
	posts  *services.PostService
	groups GroupLister
}

// NewPostController creates a new PostController
func NewPostController(base *Base, posts *services.PostService, groups GroupLister) *PostController {
	return &PostController{Base: base, posts: posts, groups: groups}
}

// postForm holds the submitted values so a rejected form can be shown again.
type postForm struct {
	Text  string
	Group string
}

// postRequest is a parsed create or edit submission.
type postRequest struct {
	Text  *string
	Group *string
	Image *services.ImageUpload

	closer io.Closer
}

func (p *postRequest) Close() {
	if p.closer != nil {
		p.closer.Close()
	}
}

func (p *postRequest) form() postForm {
	var f postForm
	if p.Text != nil {
		f.Text = *p.Text
	}
	if p.Group != nil {
		f.Group = *p.Group
	}
	return f
}

// readPost parses a JSON body or a (multipart) form. Fields missing from the
// request stay nil.
func readPost(r *http.Request) (*postRequest, error) {
	req := &postRequest{}
	if sentJSON(r) {
		var body struct {
			Text  *string `json:"text"`
			Group *string `json:"group"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		req.Text, req.Group = body.Text, body.Group
		return req, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	if _, ok := r.PostForm["text"]; ok {
		text := r.PostForm.Get("text")
		req.Text = &text
	}
	if _, ok := r.PostForm["group"]; ok {
		group := r.PostForm.Get("group")
		req.Group = &group
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		req.Image = &services.ImageUpload{Filename: header.Filename, Content: file}
		req.closer = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, err
	}
	return req, nil
}

// Show displays a single post with its comments.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}

	detail, err := pc.posts.GetPost(r.Context(), id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, detail)
		return
	}
	pc.render(w, r, http.StatusOK, views.PostDetail, map[string]any{"Detail": detail, "CutStr": detailTitleCut})
}

// New displays the form for creating a new post.
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.renderForm(w, r, http.StatusOK, 0, postForm{}, nil)
}

// Create stores a new post and redirects to the author's profile.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	req, err := readPost(r)
	if err != nil {
		pc.badRequest(w, r, err)
		return
	}
	defer req.Close()

	in := services.PostInput{Image: req.Image}
	if req.Text != nil {
		in.Text = *req.Text
	}
	if req.Group != nil {
		in.Group = *req.Group
	}

	ctx := r.Context()
	me := auth.Username(ctx)
	post, err := pc.posts.CreatePost(ctx, me, in)
	if verr, ok := services.AsValidationError(err); ok {
		pc.invalid(w, r, 0, req.form(), verr)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusCreated, post)
		return
	}
	redirect(w, r, profileURL(me))
}

// EditForm displays the edit form to the post's author. Anyone else is sent
// to the post.
func (pc *PostController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}

	ctx := r.Context()
	res, err := pc.posts.AuthorizeEdit(ctx, auth.Username(ctx), id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if pc.refused(w, r, id, res) {
		return
	}
	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, res.Post)
		return
	}
	pc.renderForm(w, r, http.StatusOK, id, postForm{Text: res.Post.Text, Group: res.Post.GroupSlug}, nil)
}

// Update applies an edit by the post's author and redirects to the post.
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}

	req, err := readPost(r)
	if err != nil {
		pc.badRequest(w, r, err)
		return
	}
	defer req.Close()

	ctx := r.Context()
	res, err := pc.posts.EditPost(ctx, auth.Username(ctx), id, services.PostUpdate{
		Text:  req.Text,
		Group: req.Group,
		Image: req.Image,
	})
	if verr, ok := services.AsValidationError(err); ok {
		pc.invalid(w, r, id, req.form(), verr)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if pc.refused(w, r, id, res) {
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, res.Post)
		return
	}
	redirect(w, r, postURL(id))
}

// refused answers a non-OK edit result and reports whether it did.
func (pc *PostController) refused(w http.ResponseWriter, r *http.Request, id int, res services.EditResult) bool {
	switch res.Status {
	case services.EditOK:
		return false
	case services.EditNotFound:
		pc.NotFound(w, r)
	default:
		if wantsJSON(r) {
			pc.sendError(w, "only the author can edit this post", http.StatusForbidden)
		} else {
			redirect(w, r, postURL(id))
		}
	}
	return true
}

func (pc *PostController) invalid(w http.ResponseWriter, r *http.Request, id int, form postForm, verr *services.ValidationError) {
	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
		return
	}
	pc.renderForm(w, r, http.StatusOK, id, form, verr.Fields)
}

func (pc *PostController) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) || sentJSON(r) {
		pc.sendError(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "Bad Request", http.StatusBadRequest)
}

// renderForm shows the post form. id is zero for a new post.
func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, status, id int, form postForm, errs map[string]string) {
	groups, err := pc.groups.ListGroups()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}
	header := createHeader
	if id > 0 {
		header = editHeader
	}
	pc.render(w, r, status, views.CreatePost, map[string]any{
		"Header": header,
		"IsEdit": id > 0,
		"PostID": id,
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
	})
}
