package models

import (
	"errors"
	"strings"
	"time"
)

// Post represents a blog post. AuthorID may be nil; for posts mapped from an
// external source it holds the source's user id.
type Post struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Category  string     `json:"category,omitempty"`
	Tags      string     `json:"tags,omitempty"`
	AuthorID  *int       `json:"authorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Published bool       `json:"published"`
	External  bool       `json:"external,omitempty"`
	Comments  []*Comment `json:"comments,omitempty"`
}

// PostInput is the payload for creating a post.
type PostInput struct {
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Content   string `json:"content" validate:"required,min=10"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
	Category  string `json:"category" validate:"max=50"`
	Tags      string `json:"tags" validate:"max=500"`
	AuthorID  *int   `json:"authorId" validate:"omitempty,gt=0"`
	Published *bool  `json:"published"`
}

// PostPatch carries the fields of a partial update. Nil fields keep the
// stored value. It has no ID or CreatedAt so neither can be changed.
type PostPatch struct {
	Title     *string `json:"title" validate:"omitempty,min=3,max=200"`
	Content   *string `json:"content" validate:"omitempty,min=10"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,url"`
	Category  *string `json:"category" validate:"omitempty,max=50"`
	Tags      *string `json:"tags" validate:"omitempty,max=500"`
	AuthorID  *int    `json:"authorId" validate:"omitempty,gt=0"`
	Published *bool   `json:"published"`
}

// NewPost builds a post from input. Published defaults to true.
func NewPost(in PostInput) *Post {
	published := true
	if in.Published != nil {
		published = *in.Published
	}
	return &Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		Category:  in.Category,
		Tags:      in.Tags,
		AuthorID:  in.AuthorID,
		Published: published,
	}
}

// BeforeCreate stamps the creation time and drops attached comments
func (p *Post) BeforeCreate() {
	p.CreatedAt = Now()
	p.Comments = nil
}

// Merge returns a copy of p with the non-nil fields of patch applied.
func (p Post) Merge(patch PostPatch) Post {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.AuthorID != nil {
		id := *patch.AuthorID
		p.AuthorID = &id
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}
	return p
}

// Matches reports whether q is a case-insensitive substring of the title,
// content or tags. An empty query matches every post.
func (p *Post) Matches(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) ||
		strings.Contains(strings.ToLower(p.Tags), q)
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}
