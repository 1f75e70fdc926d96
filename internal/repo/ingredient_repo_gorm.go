package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-recipe-api/internal/domain"
)

type IngredientRepo struct{ db *gorm.DB }

func NewIngredientRepo(db *gorm.DB) *IngredientRepo { return &IngredientRepo{db: db} }

func (r *IngredientRepo) GetOrCreate(ctx context.Context, ownerID uint, name string) (*domain.Ingredient, error) {
	name = strings.TrimSpace(name)
	var ing domain.Ingredient
	err := r.db.WithContext(ctx).
		First(&ing, "user_id = ? AND name = ?", ownerID, name).Error
	if err == nil {
		return &ing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ing = domain.Ingredient{UserID: ownerID, Name: name}
	if err := r.db.WithContext(ctx).Create(&ing).Error; err != nil {
		if IsDupKey(err) {
			err = r.db.WithContext(ctx).
				First(&ing, "user_id = ? AND name = ?", ownerID, name).Error
			if err != nil {
				return nil, err
			}
			return &ing, nil
		}
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepo) FindByID(ctx context.Context, ownerID, id uint) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := r.db.WithContext(ctx).First(&ing, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepo) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ingredient{}).
		Where("ingredients.user_id = ?", ownerID)
	if assignedOnly {
		q = q.Joins("JOIN recipe_ingredients ri ON ri.ingredient_id = ingredients.id")
	}
	var ings []domain.Ingredient
	err := q.Distinct("ingredients.*").Order("ingredients.name DESC").Find(&ings).Error
	return ings, err
}

func (r *IngredientRepo) Rename(ctx context.Context, ing *domain.Ingredient, name string) error {
	return r.db.WithContext(ctx).Model(ing).Update("name", strings.TrimSpace(name)).Error
}

func (r *IngredientRepo) Delete(ctx context.Context, ownerID, id uint) (bool, error) {
	ing, err := r.FindByID(ctx, ownerID, id)
	if err != nil || ing == nil {
		return false, err
	}
	tx := r.db.WithContext(ctx)
	if err := tx.Exec("DELETE FROM recipe_ingredients WHERE ingredient_id = ?", ing.ID).Error; err != nil {
		return false, err
	}
	return true, tx.Delete(ing).Error
}
