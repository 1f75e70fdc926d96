package domain

import "context"

// Tag 归属单个用户，名字在 (user_id, name) 上唯一
type Tag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;uniqueIndex:uix_tags_owner_name;not null" json:"-"`
	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name   string `gorm:"size:255;uniqueIndex:uix_tags_owner_name;not null" json:"name"`
}

func (Tag) TableName() string { return "tags" }

type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;uniqueIndex:uix_ingredients_owner_name;not null" json:"-"`
	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name   string `gorm:"size:255;uniqueIndex:uix_ingredients_owner_name;not null" json:"name"`
}

func (Ingredient) TableName() string { return "ingredients" }

type TagRepository interface {
	GetOrCreate(ctx context.Context, ownerID uint, name string) (*Tag, error)
	FindByID(ctx context.Context, ownerID, id uint) (*Tag, error)
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]Tag, error)
	Rename(ctx context.Context, t *Tag, name string) error
	Delete(ctx context.Context, ownerID, id uint) (bool, error)
}

type IngredientRepository interface {
	GetOrCreate(ctx context.Context, ownerID uint, name string) (*Ingredient, error)
	FindByID(ctx context.Context, ownerID, id uint) (*Ingredient, error)
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]Ingredient, error)
	Rename(ctx context.Context, i *Ingredient, name string) error
	Delete(ctx context.Context, ownerID, id uint) (bool, error)
}
