package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/policy"
	"yatube/internal/repository/sqldb"
	"yatube/internal/storage"
)

const msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// Invalidator drops every cached page.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type PostService struct {
	repo      *sqldb.PostRepository
	groupRepo *sqldb.GroupRepository
	images    storage.ImageStore
	pages     Invalidator
}

func NewPostService(db *gorm.DB, images storage.ImageStore, pages Invalidator) *PostService {
	return &PostService{
		repo:      &sqldb.PostRepository{DB: db},
		groupRepo: &sqldb.GroupRepository{DB: db},
		images:    images,
		pages:     pages,
	}
}

func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// Groups lists the choices offered by the post form.
func (s *PostService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	return s.repo.Count(ctx, sqldb.PostFilter{AuthorID: &authorID})
}

// validate runs the field rules and resolves the group choice.
func (s *PostService) validate(ctx context.Context, in *form.PostInput) (*uint64, error) {
	errs := in.Validate()
	if errs == nil {
		errs = form.Errors{}
	}
	groupID := in.GroupID()
	if in.Group != "" && !errs.Has("group") {
		if groupID == nil {
			errs.Add("group", msgInvalidChoice)
		} else if _, err := s.groupRepo.FindByID(ctx, *groupID); err != nil {
			if notFound(err) != ErrNotFound {
				return nil, err
			}
			errs.Add("group", msgInvalidChoice)
		}
	}
	if !errs.Empty() {
		return nil, errs
	}
	return groupID, nil
}

func (s *PostService) saveImage(ctx context.Context, up *form.Upload) (string, error) {
	key := storage.NewImageKey(up.Extension())
	if err := s.images.Save(ctx, key, up.ContentType(), up.Data); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PostService) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("delete image failed")
	}
}

// Create stores a new post authored by actor. A form.Errors error means the
// input was rejected and nothing was written.
func (s *PostService) Create(ctx context.Context, actor policy.Actor, in *form.PostInput) (*model.Post, error) {
	if !policy.CanCreatePost(actor) {
		return nil, ErrUnauthorized
	}
	groupID, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Text:     in.Text,
		AuthorID: actor.ID,
		GroupID:  groupID,
	}
	if in.Image != nil {
		if post.Image, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}
	if err = s.repo.Create(ctx, post); err != nil {
		s.dropImage(ctx, post.Image)
		return nil, err
	}
	s.pages.Invalidate(ctx)
	return post, nil
}

// Edit updates text, group and image of postID. The loaded post is returned
// with ErrForbidden when actor is not its author, so callers can show it.
func (s *PostService) Edit(ctx context.Context, actor policy.Actor, postID uint64, in *form.PostInput) (*model.Post, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditPost(actor, post) {
		return post, ErrForbidden
	}
	groupID, err := s.validate(ctx, in)
	if err != nil {
		return post, err
	}

	oldImage := post.Image
	switch {
	case in.Image != nil:
		if post.Image, err = s.saveImage(ctx, in.Image); err != nil {
			return post, err
		}
	case in.ClearImage:
		post.Image = ""
	}
	post.Text = in.Text
	post.GroupID = groupID
	post.Group = nil

	if err = s.repo.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.dropImage(ctx, post.Image)
		}
		return post, err
	}
	if post.Image != oldImage {
		s.dropImage(ctx, oldImage)
	}
	s.pages.Invalidate(ctx)
	return post, nil
}
