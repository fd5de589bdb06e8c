// Package views renders the HTML pages from templates embedded in the binary.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"inkpost/app/models"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names understood by Render.
const (
	PageIndex    = "index"
	PagePost     = "post"
	PageRegister = "register"
	PageLogin    = "login"
	PageAbout    = "about"
	PageContact  = "contact"
	PageMakePost = "make-post"
	PageError    = "error"
)

var pages = []string{PageIndex, PagePost, PageRegister, PageLogin, PageAbout, PageContact, PageMakePost, PageError}

// Renderer turns page data into HTML.
type Renderer interface {
	Render(w io.Writer, page string, data *PageData) error
}

// PageData is everything a template may show.
type PageData struct {
	Title       string
	Flash       string
	CurrentUser *models.User
	Posts       []*models.Post
	Post        *models.Post
	Form        any
	Errors      models.ValidationErrors
	FormError   string
	Editing     bool
	Action      string
	Status      int
	Message     string
}

// Authenticated reports whether a user is signed in.
func (d *PageData) Authenticated() bool {
	return d != nil && d.CurrentUser != nil
}

// Templates is the html/template Renderer.
type Templates struct {
	pages map[string]*template.Template
}

// bodyPolicy keeps the formatting markup a rich-text editor produces and
// strips scripts, event handlers and unsafe URLs.
var bodyPolicy = bluemonday.UGCPolicy()

var funcs = template.FuncMap{
	"sanitize": func(s string) template.HTML {
		return template.HTML(bodyPolicy.Sanitize(s))
	},
}

// New parses the embedded templates.
func New() (*Templates, error) {
	return NewFromFS(templateFS, "templates")
}

// NewFromFS parses layout.html plus one <page>.html per page from dir in fsys.
func NewFromFS(fsys fs.FS, dir string) (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, dir+"/layout.html", dir+"/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		t.pages[page] = tpl
	}
	return t, nil
}

func (t *Templates) Render(w io.Writer, page string, data *PageData) error {
	tpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tpl.ExecuteTemplate(w, "layout", data)
}
