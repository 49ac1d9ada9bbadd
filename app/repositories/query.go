package repositories

import "quill/app/models"

// PostQuery answers read-side post lookups on top of an enumerator.
type PostQuery struct {
	src PostEnumerator
}

// NewPostQuery creates a PostQuery over src
func NewPostQuery(src PostEnumerator) *PostQuery {
	return &PostQuery{src: src}
}

// Where returns the posts for which keep reports true, in insertion order.
func (q *PostQuery) Where(keep func(post *models.Post) bool) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := q.src.Each(func(post *models.Post) bool {
		if keep(post) {
			posts = append(posts, post)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByAuthor returns the posts written by authorID.
func (q *PostQuery) ByAuthor(authorID int) ([]*models.Post, error) {
	return q.Where(func(post *models.Post) bool {
		return post.AuthorID != nil && *post.AuthorID == authorID
	})
}

// ByCategory returns the posts whose category equals category exactly.
// Case folding is left to the caller.
func (q *PostQuery) ByCategory(category string) ([]*models.Post, error) {
	return q.Where(func(post *models.Post) bool {
		return post.Category == category
	})
}

// Search returns the posts whose title, content or tags contain query,
// ignoring case. The empty query returns every post.
func (q *PostQuery) Search(query string) ([]*models.Post, error) {
	return q.Where(func(post *models.Post) bool {
		return post.Matches(query)
	})
}
