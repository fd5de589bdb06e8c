package models

// PostForm is the submitted content of the new-post and edit-post forms.
// Author is only honoured on edit.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Author   string `form:"author" validate:"max=250"`
	Body     string `form:"body" validate:"required"`
}

// RegisterForm is the submitted registration form.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=250"`
	Username string `form:"name" validate:"required,max=250"`
	Password string `form:"password" validate:"required,min=3,maxbytes=72"`
}

// LoginForm is the submitted login form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,max=250"`
	Password string `form:"password" validate:"required"`
}

func (f *PostForm) Validate() error     { return Validate(f) }
func (f *RegisterForm) Validate() error { return Validate(f) }
func (f *LoginForm) Validate() error    { return Validate(f) }
