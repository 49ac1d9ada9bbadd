package external

import (
	"fmt"
	"strings"
	"time"

	"quill/app/models"
)

// Uncategorized is the category of a source post without tags.
const Uncategorized = "Uncategorized"

// ImageURL returns the stable placeholder image for a source post id.
func ImageURL(id int) string {
	return fmt.Sprintf("https://picsum.photos/seed/post-%d/800/450", id)
}

// MapPost converts a source record to a local post stamped with now.
func MapPost(src Post, now time.Time) *models.Post {
	category := Uncategorized
	if len(src.Tags) > 0 {
		category = src.Tags[0]
	}
	author := src.UserID
	return &models.Post{
		ID:        src.ID,
		Title:     src.Title,
		Content:   src.Body,
		ImageURL:  ImageURL(src.ID),
		Category:  category,
		Tags:      strings.Join(src.Tags, ","),
		AuthorID:  &author,
		CreatedAt: now,
		Published: true,
		External:  true,
	}
}

// MapPosts maps every record with the same timestamp.
func MapPosts(src []Post, now time.Time) []*models.Post {
	posts := make([]*models.Post, 0, len(src))
	for _, p := range src {
		posts = append(posts, MapPost(p, now))
	}
	return posts
}
