package service

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/policy"
	"yatube/internal/repository/sqldb"
)

type CommentService struct {
	repo     *sqldb.CommentRepository
	postRepo *sqldb.PostRepository
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		repo:     &sqldb.CommentRepository{DB: db},
		postRepo: &sqldb.PostRepository{DB: db},
	}
}

// Add attaches a comment to postID. Invalid input returns form.Errors.
func (s *CommentService) Add(ctx context.Context, actor policy.Actor, postID uint64, in *form.CommentInput) (*model.Comment, error) {
	if !policy.CanComment(actor) {
		return nil, ErrUnauthorized
	}
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, notFound(err)
	}
	if errs := in.Validate(); errs != nil {
		return nil, errs
	}
	c := &model.Comment{PostID: postID, AuthorID: actor.ID, Text: in.Text}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the comments of postID, oldest first.
func (s *CommentService) List(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}
