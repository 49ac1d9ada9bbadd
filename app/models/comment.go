package models

import "time"

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int       `json:"authorId"`
	PostID    int       `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentInput is the payload for creating a comment.
type CommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// BeforeCreate stamps the creation time
func (c *Comment) BeforeCreate() {
	c.CreatedAt = Now()
}
