package repositories

import "quill/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List() ([]*models.User, error)
}

// PostEnumerator visits every post in insertion order until fn returns false.
type PostEnumerator interface {
	Each(fn func(post *models.Post) bool) error
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	PostEnumerator
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List() ([]*models.Post, error)
	Update(id int, patch models.PostPatch) (*models.Post, error)
	Delete(id int) (bool, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Delete(id int) (bool, error)
	Count() (int, error)
}
