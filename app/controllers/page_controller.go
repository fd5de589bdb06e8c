package controllers

import (
	"net/http"

	"inkpost/app/logging"
	"inkpost/app/sessions"
	"inkpost/app/views"
)

// PageController serves the static pages
type PageController struct {
	base
}

func NewPageController(sm *sessions.Manager, renderer views.Renderer, log *logging.Logger) *PageController {
	return &PageController{base: base{views: renderer, sessions: sm, log: log}}
}

func (pc *PageController) About(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.PageAbout, &views.PageData{Title: "About"})
}

func (pc *PageController) Contact(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.PageContact, &views.PageData{Title: "Contact"})
}
