package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"inkpost/app/logging"
	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/services"
	"inkpost/app/sessions"
	"inkpost/app/views"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, sm *sessions.Manager, renderer views.Renderer, log *logging.Logger) *PostController {
	return &PostController{
		base:        base{views: renderer, sessions: sm, log: log},
		postService: postService,
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.PageIndex, &views.PageData{Title: "Blog", Posts: posts})
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, ok := pc.loadPost(w, r)
	if !ok {
		return
	}
	pc.render(w, r, http.StatusOK, views.PagePost, &views.PageData{Title: post.Title, Post: post})
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.renderForm(w, r, http.StatusOK, &models.PostForm{}, 0, nil, "")
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := pc.parseForm(w, r)
	if !ok {
		return
	}
	user := CurrentUser(r.Context())
	if user == nil {
		pc.redirect(w, r, sessions.LoginPath)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), form, user.Username)
	if err != nil {
		pc.formError(w, r, form, 0, err)
		return
	}
	pc.log.Info.Printf("post %d created by user %d", post.ID, user.ID)
	pc.redirect(w, r, "/")
}

// Edit displays the edit form pre-filled from the stored post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	post, ok := pc.loadPost(w, r)
	if !ok {
		return
	}
	pc.renderForm(w, r, http.StatusOK, post.Form(), post.ID, nil, "")
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		pc.notFound(w, r)
		return
	}
	form, ok := pc.parseForm(w, r)
	if !ok {
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, form)
	if err != nil {
		pc.formError(w, r, form, id, err)
		return
	}
	pc.redirect(w, r, "/post/"+strconv.Itoa(post.ID))
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		pc.notFound(w, r)
		return
	}

	err := pc.postService.DeletePost(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		pc.notFound(w, r)
		return
	case err != nil:
		pc.serverError(w, r, err)
		return
	}
	pc.log.Info.Printf("post %d deleted", id)
	pc.redirect(w, r, "/")
}

func (pc *PostController) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := idParam(r)
	if !ok {
		pc.notFound(w, r)
		return nil, false
	}
	post, err := pc.postService.GetPost(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		pc.notFound(w, r)
		return nil, false
	case err != nil:
		pc.serverError(w, r, err)
		return nil, false
	}
	return post, true
}

func (pc *PostController) parseForm(w http.ResponseWriter, r *http.Request) (*models.PostForm, bool) {
	if err := r.ParseForm(); err != nil {
		pc.badRequest(w, r)
		return nil, false
	}
	return &models.PostForm{
		Title:    r.PostForm.Get("title"),
		Subtitle: r.PostForm.Get("subtitle"),
		ImgURL:   r.PostForm.Get("img_url"),
		Author:   r.PostForm.Get("author"),
		Body:     r.PostForm.Get("body"),
	}, true
}

// formError maps a failed create or update onto the right response. id is
// zero for a new post.
func (pc *PostController) formError(w http.ResponseWriter, r *http.Request, form *models.PostForm, id int, err error) {
	var ve models.ValidationErrors
	switch {
	case errors.As(err, &ve):
		pc.renderForm(w, r, http.StatusUnprocessableEntity, form, id, ve, "")
	case errors.Is(err, services.ErrTitleTaken):
		pc.renderForm(w, r, http.StatusConflict, form, id, nil, "A post with that title already exists.")
	case errors.Is(err, repositories.ErrNotFound):
		pc.notFound(w, r)
	default:
		pc.serverError(w, r, err)
	}
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, status int, form *models.PostForm, id int, errs models.ValidationErrors, formErr string) {
	data := &views.PageData{
		Title:     "New Post",
		Form:      form,
		Errors:    errs,
		FormError: formErr,
		Action:    "/new-post",
	}
	if id > 0 {
		data.Title = "Edit Post"
		data.Editing = true
		data.Action = "/edit-post/" + strconv.Itoa(id)
	}
	pc.render(w, r, status, views.PageMakePost, data)
}
