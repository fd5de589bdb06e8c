package models

// DateLayout is how a post's publication date is rendered and stored.
const DateLayout = "January 02, 2006"

// Post represents a blog post.
type Post struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Author   string `json:"author" gorm:"size:250;not null" validate:"required,max=250"`
	Title    string `json:"title" gorm:"size:250;not null;uniqueIndex" validate:"required,max=250"`
	Subtitle string `json:"subtitle" gorm:"size:250;not null" validate:"required,max=250"`
	Date     string `json:"date" gorm:"size:250;not null" validate:"required,max=250"`
	Body     string `json:"body" gorm:"type:text;not null" validate:"required"`
	ImgURL   string `json:"img_url" gorm:"column:img_url;size:250;not null" validate:"required,url,max=250"`
}

// TableName keeps the relational table name stable across backends.
func (Post) TableName() string { return "blog_posts" }

// User represents a registered author. Password only ever holds a hash.
type User struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"size:250;not null;uniqueIndex" validate:"required,email,max=250"`
	Username string `json:"username" gorm:"size:250;not null" validate:"required,max=250"`
	Password string `json:"-" gorm:"size:250;not null" validate:"required"`
}

func (User) TableName() string { return "new_users" }
