package models

import (
	"strings"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return Validate(p)
}

// Stamp sets the server-side fields of a new post: the author snapshot and
// the publication date.
func (p *Post) Stamp(author string, now time.Time) {
	p.Author = author
	if p.Date == "" {
		p.Date = now.Format(DateLayout)
	}
}

// Apply overwrites the editable fields of p with the submitted form. ID and
// Date are never replaced; a blank author keeps the stored snapshot.
func (p *Post) Apply(form *PostForm) {
	p.Title = strings.TrimSpace(form.Title)
	p.Subtitle = strings.TrimSpace(form.Subtitle)
	p.ImgURL = strings.TrimSpace(form.ImgURL)
	p.Body = form.Body
	if author := strings.TrimSpace(form.Author); author != "" {
		p.Author = author
	}
}

// Form returns a form pre-filled from the post.
func (p *Post) Form() *PostForm {
	return &PostForm{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		ImgURL:   p.ImgURL,
		Author:   p.Author,
		Body:     p.Body,
	}
}
