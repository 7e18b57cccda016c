package service

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/policy"
	"yatube/internal/repository/sqldb"
)

type FollowService struct {
	repo     *sqldb.FollowRepository
	userRepo *sqldb.UserRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		repo:     &sqldb.FollowRepository{DB: db},
		userRepo: &sqldb.UserRepository{DB: db},
	}
}

func (s *FollowService) author(ctx context.Context, actor policy.Actor, username string) (*model.User, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return author, nil
}

// Follow subscribes actor to username. Following oneself is a no-op;
// changed reports whether a new edge was stored.
func (s *FollowService) Follow(ctx context.Context, actor policy.Actor, username string) (author *model.User, changed bool, err error) {
	if author, err = s.author(ctx, actor, username); err != nil {
		return nil, false, err
	}
	if !policy.CanFollow(actor, author.ID) {
		return author, false, nil
	}
	changed, err = s.repo.Follow(ctx, actor.ID, author.ID)
	return author, changed, err
}

func (s *FollowService) Unfollow(ctx context.Context, actor policy.Actor, username string) (author *model.User, changed bool, err error) {
	if author, err = s.author(ctx, actor, username); err != nil {
		return nil, false, err
	}
	if actor.ID == author.ID {
		return author, false, nil
	}
	changed, err = s.repo.Unfollow(ctx, actor.ID, author.ID)
	return author, changed, err
}

func (s *FollowService) IsFollowing(ctx context.Context, actor policy.Actor, authorID uint64) (bool, error) {
	if !actor.IsAuthenticated() {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, actor.ID, authorID)
}
