package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-recipe-api/internal/domain"
)

type TagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) *TagRepo { return &TagRepo{db: db} }

// GetOrCreate 以 (owner, name) 为自然键。并发建同名 tag 时靠唯一索引
// 兜底：冲突则重查一次。
func (r *TagRepo) GetOrCreate(ctx context.Context, ownerID uint, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	var t domain.Tag
	err := r.db.WithContext(ctx).
		First(&t, "user_id = ? AND name = ?", ownerID, name).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	t = domain.Tag{UserID: ownerID, Name: name}
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		if IsDupKey(err) {
			err = r.db.WithContext(ctx).
				First(&t, "user_id = ? AND name = ?", ownerID, name).Error
			if err != nil {
				return nil, err
			}
			return &t, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) FindByID(ctx context.Context, ownerID, id uint) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List assignedOnly 时只要挂到任意 recipe 即算被使用，多重关联去重
func (r *TagRepo) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]domain.Tag, error) {
	q := r.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("tags.user_id = ?", ownerID)
	if assignedOnly {
		q = q.Joins("JOIN recipe_tags rt ON rt.tag_id = tags.id")
	}
	var tags []domain.Tag
	err := q.Distinct("tags.*").Order("tags.name DESC").Find(&tags).Error
	return tags, err
}

func (r *TagRepo) Rename(ctx context.Context, t *domain.Tag, name string) error {
	return r.db.WithContext(ctx).Model(t).Update("name", strings.TrimSpace(name)).Error
}

// Delete 同时清掉 recipe_tags 里的引用，recipe 本身不受影响
func (r *TagRepo) Delete(ctx context.Context, ownerID, id uint) (bool, error) {
	t, err := r.FindByID(ctx, ownerID, id)
	if err != nil || t == nil {
		return false, err
	}
	tx := r.db.WithContext(ctx)
	if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", t.ID).Error; err != nil {
		return false, err
	}
	return true, tx.Delete(t).Error
}
