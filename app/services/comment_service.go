package services

import (
	"fmt"

	"quill/app/models"
	"quill/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a comment by the caller to an existing post
func (s *CommentService) CreateComment(caller *models.Principal, postID int, in models.CommentInput) (*models.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	comment := &models.Comment{Content: in.Content, AuthorID: caller.UserID, PostID: postID}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	return s.commentRepo.ListByPost(postID)
}

// DeleteComment deletes a comment for its author or an admin
func (s *CommentService) DeleteComment(caller *models.Principal, id int) error {
	if caller == nil {
		return ErrUnauthorized
	}

	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !caller.CanModify(&comment.AuthorID) {
		return ErrForbidden
	}

	existed, err := s.commentRepo.Delete(id)
	if err != nil {
		return err
	}
	if !existed {
		return repositories.ErrNotFound
	}
	return nil
}
