package sqldb

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
)

type GroupRepository struct {
	DB *gorm.DB
}

func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	return r.DB.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint64) (*model.Group, error) {
	var group model.Group
	err := r.DB.WithContext(ctx).First(&group, id).Error
	return &group, err
}

func (r *GroupRepository) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var group model.Group
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	return &group, err
}

// List returns every group ordered by title, for the post form's select box.
func (r *GroupRepository) List(ctx context.Context) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.WithContext(ctx).Order("title ASC, id ASC").Find(&list).Error
	return list, err
}

// DeleteBySlug is idempotent for missing groups. A group that still has
// posts is protected by the foreign key and the error is returned.
func (r *GroupRepository) DeleteBySlug(ctx context.Context, slug string) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("slug = ?", slug).Delete(&model.Group{})
	return tx.RowsAffected, tx.Error
}
