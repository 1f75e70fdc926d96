package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-recipe-api/internal/domain"
)

type RecipeRepo struct{ db *gorm.DB }

func NewRecipeRepo(db *gorm.DB) *RecipeRepo { return &RecipeRepo{db: db} }

func (r *RecipeRepo) Create(ctx context.Context, rec *domain.Recipe) error {
	return r.db.WithContext(ctx).Omit("User").Create(rec).Error
}

// InTx 把三个仓储绑到同一事务上跑写操作，fn 报错即整体回滚
func (r *RecipeRepo) InTx(ctx context.Context, fn func(recipes *RecipeRepo, tags *TagRepo, ings *IngredientRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RecipeRepo{db: tx}, &TagRepo{db: tx}, &IngredientRepo{db: tx})
	})
}

func (r *RecipeRepo) FindByID(ctx context.Context, ownerID, id uint) (*domain.Recipe, error) {
	var rec domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("Tags").Preload("Ingredients").
		First(&rec, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List 按 owner 过滤；tag/ingredient 过滤各自为 "任一匹配"，两者相与。
// many2many join 会放大行数，必须 distinct。
func (r *RecipeRepo) List(ctx context.Context, ownerID uint, f domain.RecipeFilter) ([]domain.Recipe, error) {
	q := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("recipes.user_id = ?", ownerID)

	if len(f.TagIDs) > 0 {
		q = q.Joins("JOIN recipe_tags rt ON rt.recipe_id = recipes.id").
			Where("rt.tag_id IN ?", f.TagIDs)
	}
	if len(f.IngredientIDs) > 0 {
		q = q.Joins("JOIN recipe_ingredients ri ON ri.recipe_id = recipes.id").
			Where("ri.ingredient_id IN ?", f.IngredientIDs)
	}

	var recs []domain.Recipe
	err := q.Distinct("recipes.*").
		Order("recipes.id DESC").
		Preload("Tags").Preload("Ingredients").
		Find(&recs).Error
	return recs, err
}

func (r *RecipeRepo) UpdateFields(ctx context.Context, rec *domain.Recipe, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(rec).Updates(fields).Error
}

func (r *RecipeRepo) ReplaceTags(ctx context.Context, rec *domain.Recipe, tags []domain.Tag) error {
	assoc := r.db.WithContext(ctx).Model(rec).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&tags)
}

func (r *RecipeRepo) ReplaceIngredients(ctx context.Context, rec *domain.Recipe, ings []domain.Ingredient) error {
	assoc := r.db.WithContext(ctx).Model(rec).Association("Ingredients")
	if len(ings) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&ings)
}

// Delete 先清 join 表再删主行，tag/ingredient 本身保留
func (r *RecipeRepo) Delete(ctx context.Context, ownerID, id uint) (bool, error) {
	var rec domain.Recipe
	err := r.db.WithContext(ctx).First(&rec, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	tx := r.db.WithContext(ctx)
	if err := tx.Model(&rec).Association("Tags").Clear(); err != nil {
		return false, err
	}
	if err := tx.Model(&rec).Association("Ingredients").Clear(); err != nil {
		return false, err
	}
	return true, tx.Delete(&rec).Error
}
