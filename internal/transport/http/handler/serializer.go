package handler

import (
	"github.com/shopspring/decimal"

	"go-recipe-api/internal/domain"
)

type nameRef struct {
	Name string `json:"name" binding:"required,max=255"`
}

// recipeIn 所有字段指针化：缺省 / 显式空 / 有值 三态都要区分。
// 入参里没有 owner 字段，改 owner 的尝试直接被序列化层吃掉。
type recipeIn struct {
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" binding:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Link        *string          `json:"link" binding:"omitempty,max=255"`
	Tags        *[]nameRef       `json:"tags" binding:"omitempty,dive"`
	Ingredients *[]nameRef       `json:"ingredients" binding:"omitempty,dive"`
}

type recipeListItem struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       decimal.Decimal     `json:"price"`
	Link        string              `json:"link"`
	Tags        []domain.Tag        `json:"tags"`
	Ingredients []domain.Ingredient `json:"ingredients"`
}

type recipeDetail struct {
	recipeListItem
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func serializeRecipeList(recs []domain.Recipe) []recipeListItem {
	out := make([]recipeListItem, 0, len(recs))
	for i := range recs {
		out = append(out, serializeRecipeItem(&recs[i]))
	}
	return out
}

func serializeRecipeItem(r *domain.Recipe) recipeListItem {
	it := recipeListItem{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
	if it.Tags == nil {
		it.Tags = []domain.Tag{}
	}
	if it.Ingredients == nil {
		it.Ingredients = []domain.Ingredient{}
	}
	return it
}

func serializeRecipeDetail(r *domain.Recipe, mediaURL string) recipeDetail {
	d := recipeDetail{
		recipeListItem: serializeRecipeItem(r),
		Description:    r.Description,
	}
	if r.Image != "" {
		u := mediaURL + "/" + r.Image
		d.Image = &u
	}
	return d
}
