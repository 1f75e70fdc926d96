package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"-"`
	User        User            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Link        string          `gorm:"size:255" json:"link"`
	Image       string          `gorm:"size:255" json:"image"`
	Tags        []Tag           `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient    `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeFilter 列表筛选：每组 id 内部 OR，两组之间 AND
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

type RecipeRepository interface {
	Create(ctx context.Context, r *Recipe) error
	FindByID(ctx context.Context, ownerID, id uint) (*Recipe, error)
	List(ctx context.Context, ownerID uint, f RecipeFilter) ([]Recipe, error)
	UpdateFields(ctx context.Context, r *Recipe, fields map[string]any) error
	ReplaceTags(ctx context.Context, r *Recipe, tags []Tag) error
	ReplaceIngredients(ctx context.Context, r *Recipe, ings []Ingredient) error
	Delete(ctx context.Context, ownerID, id uint) (bool, error)
}
