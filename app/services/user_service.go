package services

import (
	"strings"

	"quill/app/models"
	"quill/app/repositories"
)

// Stats are the aggregate counts shown to admins.
type Stats struct {
	Users          int            `json:"users"`
	Posts          int            `json:"posts"`
	PublishedPosts int            `json:"publishedPosts"`
	Comments       int            `json:"comments"`
	PostsByCat     map[string]int `json:"postsByCategory"`
}

// UserService serves admin-only views over users and content
type UserService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, posts repositories.PostRepository, comments repositories.CommentRepository) *UserService {
	return &UserService{users: users, posts: posts, comments: comments}
}

func requireAdmin(caller *models.Principal) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if !caller.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// ListUsers returns every user to an admin
func (s *UserService) ListUsers(caller *models.Principal) ([]*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.List()
}

// Me returns the caller's own account
func (s *UserService) Me(caller *models.Principal) (*models.User, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	return s.users.GetByID(caller.UserID)
}

// Stats counts users, posts and comments for an admin
func (s *UserService) Stats(caller *models.Principal) (*Stats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.Count()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Users: len(users), Comments: comments, PostsByCat: map[string]int{}}
	err = s.posts.Each(func(post *models.Post) bool {
		stats.Posts++
		if post.Published {
			stats.PublishedPosts++
		}
		category := strings.ToLower(post.Category)
		if category == "" {
			category = "uncategorized"
		}
		stats.PostsByCat[category]++
		return true
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
