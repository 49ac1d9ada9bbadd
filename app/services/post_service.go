package services

import (
	"fmt"

	"quill/app/models"
	"quill/app/repositories"
)

// PostFilter narrows ListPosts. Zero fields do not filter.
type PostFilter struct {
	AuthorID int
	Category string
	Query    string
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	query       *repositories.PostQuery
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		query:       repositories.NewPostQuery(postRepo),
	}
}

// CreatePost stores a post written by the caller. Admins may name another author.
func (s *PostService) CreatePost(caller *models.Principal, in models.PostInput) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := models.NewPost(in)
	if !caller.IsAdmin || post.AuthorID == nil {
		author := caller.UserID
		post.AuthorID = &author
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = []*models.Comment{}
	for _, comment := range comments {
		if err := post.AddComment(comment); err != nil {
			return nil, err
		}
	}

	return post, nil
}

// ListPosts returns the stored posts matching filter in insertion order
func (s *PostService) ListPosts(filter PostFilter) ([]*models.Post, error) {
	return s.query.Where(func(post *models.Post) bool {
		if filter.AuthorID != 0 && (post.AuthorID == nil || *post.AuthorID != filter.AuthorID) {
			return false
		}
		if filter.Category != "" && post.Category != filter.Category {
			return false
		}
		return post.Matches(filter.Query)
	})
}

// UpdatePost applies patch for the post's author or an admin
func (s *PostService) UpdatePost(caller *models.Principal, id int, patch models.PostPatch) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	existing, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !caller.CanModify(existing.AuthorID) {
		return nil, ErrForbidden
	}
	if patch.AuthorID != nil && !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}

	return s.postRepo.Update(id, patch)
}

// DeletePost deletes a post and all its comments for its author or an admin
func (s *PostService) DeletePost(caller *models.Principal, id int) error {
	if caller == nil {
		return ErrUnauthorized
	}

	existing, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !caller.CanModify(existing.AuthorID) {
		return ErrForbidden
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return fmt.Errorf("failed to get comments: %w", err)
	}
	for _, comment := range comments {
		if _, err := s.commentRepo.Delete(comment.ID); err != nil {
			return fmt.Errorf("failed to delete comment %d: %w", comment.ID, err)
		}
	}

	existed, err := s.postRepo.Delete(id)
	if err != nil {
		return err
	}
	if !existed {
		return repositories.ErrNotFound
	}
	return nil
}
