package sqldb

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

// PostFilter narrows a listing. Nil fields do not filter.
type PostFilter struct {
	GroupID  *uint64
	AuthorID *uint64
	// FollowerID keeps posts whose author is followed by this user.
	FollowerID *uint64
}

// Create inserts the post and its post.created event atomically.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Group").Create(post).Error; err != nil {
			return err
		}
		ob := &OutboxRepository{DB: tx}
		return ob.Insert(ctx, model.EventPostCreated, post.ID, map[string]any{
			"post_id":   post.ID,
			"author_id": post.AuthorID,
			"group_id":  post.GroupID,
		})
	})
}

// FindByID loads the post with its author and group.
func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, "id = ?", id).Error
	return &post, err
}

// Update writes the editable columns only; id, author and created_at are
// never part of the statement.
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

func (r *PostRepository) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&model.Post{})
	if f.FollowerID != nil {
		q = q.Joins("JOIN follows ON follows.author_id = posts.author_id AND follows.user_id = ?", *f.FollowerID)
	}
	if f.GroupID != nil {
		q = q.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *f.AuthorID)
	}
	return q
}

func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

// List returns one window of the filtered posts, newest first, with author
// and group loaded by two extra IN queries.
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.filtered(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}
