package service

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/policy"
	"yatube/internal/repository/sqldb"
)

// FeedService composes the paginated post listings.
type FeedService struct {
	postRepo   *sqldb.PostRepository
	groupRepo  *sqldb.GroupRepository
	userRepo   *sqldb.UserRepository
	followRepo *sqldb.FollowRepository
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		postRepo:   &sqldb.PostRepository{DB: db},
		groupRepo:  &sqldb.GroupRepository{DB: db},
		userRepo:   &sqldb.UserRepository{DB: db},
		followRepo: &sqldb.FollowRepository{DB: db},
	}
}

type GroupFeed struct {
	Group *model.Group
	Posts pkg.Page[model.Post]
}

type ProfileFeed struct {
	Author     *model.User
	Posts      pkg.Page[model.Post]
	Following  bool
	Followers  int64
	Followings int64
}

func (s *FeedService) page(ctx context.Context, f sqldb.PostFilter, rawPage string) (pkg.Page[model.Post], error) {
	total, err := s.postRepo.Count(ctx, f)
	if err != nil {
		return pkg.Page[model.Post]{}, err
	}
	req := pkg.ResolvePage(rawPage, total, pkg.PostsPerPage)
	items, err := s.postRepo.List(ctx, f, req.Offset, req.Limit)
	if err != nil {
		return pkg.Page[model.Post]{}, err
	}
	return pkg.NewPage(items, req, total), nil
}

// Home lists every post, newest first.
func (s *FeedService) Home(ctx context.Context, rawPage string) (pkg.Page[model.Post], error) {
	return s.page(ctx, sqldb.PostFilter{}, rawPage)
}

func (s *FeedService) Group(ctx context.Context, slug, rawPage string) (*GroupFeed, error) {
	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	posts, err := s.page(ctx, sqldb.PostFilter{GroupID: &group.ID}, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Posts: posts}, nil
}

// Profile lists the posts of username. Following is false for anonymous
// viewers.
func (s *FeedService) Profile(ctx context.Context, actor policy.Actor, username, rawPage string) (*ProfileFeed, error) {
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	feed := &ProfileFeed{Author: author}
	if feed.Posts, err = s.page(ctx, sqldb.PostFilter{AuthorID: &author.ID}, rawPage); err != nil {
		return nil, err
	}
	if actor.IsAuthenticated() {
		if feed.Following, err = s.followRepo.IsFollowing(ctx, actor.ID, author.ID); err != nil {
			return nil, err
		}
	}
	if feed.Followers, err = s.followRepo.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if feed.Followings, err = s.followRepo.CountFollowings(ctx, author.ID); err != nil {
		return nil, err
	}
	return feed, nil
}

// Following lists posts by the authors actor follows.
func (s *FeedService) Following(ctx context.Context, actor policy.Actor, rawPage string) (pkg.Page[model.Post], error) {
	if !actor.IsAuthenticated() {
		return pkg.Page[model.Post]{}, ErrUnauthorized
	}
	return s.page(ctx, sqldb.PostFilter{FollowerID: &actor.ID}, rawPage)
}
