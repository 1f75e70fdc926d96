package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-recipe-api/internal/domain"
)

func seedRecipe(t *testing.T, env *testEnv, u *domain.User, title string) *domain.Recipe {
	t.Helper()
	rec := &domain.Recipe{
		UserID:      u.ID,
		Title:       title,
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
		Description: "Sample description",
		Link:        "http://example.com/recipe.pdf",
	}
	require.NoError(t, env.db.Create(rec).Error)
	return rec
}

func TestCreateRecipe(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "cook@example.com", "testpass123")
	tok := env.token(t, u)

	t.Run("basic", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title":        "Chocolate cheesecake",
			"time_minutes": 30,
			"price":        "5.99",
		})
		mustStatus(t, w, http.StatusCreated)
		body := decodeBody(t, w)
		assert.Equal(t, "Chocolate cheesecake", body["title"])
		assert.Equal(t, "5.99", body["price"])

		var rec domain.Recipe
		require.NoError(t, env.db.First(&rec, "title = ?", "Chocolate cheesecake").Error)
		assert.Equal(t, u.ID, rec.UserID)
	})

	t.Run("missing required fields", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title": "No price",
		})
		mustStatus(t, w, http.StatusBadRequest)
		body := decodeBody(t, w)
		assert.Contains(t, body, "time_minutes")
		assert.Contains(t, body, "price")
	})

	t.Run("with new tags", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title":        "Thai prawn curry",
			"time_minutes": 30,
			"price":        "12.50",
			"tags":         []map[string]any{{"name": "Thai"}, {"name": "Dinner"}},
		})
		mustStatus(t, w, http.StatusCreated)

		var count int64
		env.db.Model(&domain.Tag{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 2, count)

		body := decodeBody(t, w)
		assert.Len(t, body["tags"], 2)
	})

	t.Run("with existing tag reused", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title":        "Pongal",
			"time_minutes": 60,
			"price":        "4.50",
			"tags":         []map[string]any{{"name": "Thai"}, {"name": "Breakfast"}},
		})
		mustStatus(t, w, http.StatusCreated)

		// Thai 已存在，只新建 Breakfast
		var count int64
		env.db.Model(&domain.Tag{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 3, count)
	})

	t.Run("with ingredients", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title":        "Cauliflower tacos",
			"time_minutes": 60,
			"price":        "4.30",
			"ingredients":  []map[string]any{{"name": "Cauliflower"}, {"name": "Salt"}},
		})
		mustStatus(t, w, http.StatusCreated)

		var count int64
		env.db.Model(&domain.Ingredient{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 2, count)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
			"title":        "Free lunch",
			"time_minutes": 5,
			"price":        "-1.00",
		})
		mustStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, decodeBody(t, w), "price")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", "", map[string]any{
			"title":        "Nope",
			"time_minutes": 1,
			"price":        "1.00",
		})
		mustStatus(t, w, http.StatusUnauthorized)
	})
}

func TestListRecipes(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "list@example.com", "testpass123")
	other := env.createUser(t, "other@example.com", "testpass123")
	tok := env.token(t, u)

	first := seedRecipe(t, env, u, "First")
	second := seedRecipe(t, env, u, "Second")
	seedRecipe(t, env, other, "Not mine")

	w := env.doJSON(t, http.MethodGet, "/api/recipe/recipes/", tok, nil)
	mustStatus(t, w, http.StatusOK)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	// id 倒序
	assert.EqualValues(t, second.ID, list[0]["id"])
	assert.EqualValues(t, first.ID, list[1]["id"])
	// 列表不含 description
	assert.NotContains(t, list[0], "description")
}

func TestFilterRecipes(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "filter@example.com", "testpass123")
	tok := env.token(t, u)

	r1 := seedRecipe(t, env, u, "Thai curry")
	r2 := seedRecipe(t, env, u, "Aubergine bake")
	seedRecipe(t, env, u, "Fish and chips")

	vegan := &domain.Tag{UserID: u.ID, Name: "Vegan"}
	veg := &domain.Tag{UserID: u.ID, Name: "Vegetarian"}
	require.NoError(t, env.db.Create(vegan).Error)
	require.NoError(t, env.db.Create(veg).Error)
	require.NoError(t, env.db.Model(r1).Association("Tags").Append(vegan))
	require.NoError(t, env.db.Model(r2).Association("Tags").Append(veg))

	prawns := &domain.Ingredient{UserID: u.ID, Name: "Prawns"}
	require.NoError(t, env.db.Create(prawns).Error)
	require.NoError(t, env.db.Model(r1).Association("Ingredients").Append(prawns))

	t.Run("by tags any-of", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipe/recipes/?tags=%d,%d", vegan.ID, veg.ID)
		w := env.doJSON(t, http.MethodGet, path, tok, nil)
		mustStatus(t, w, http.StatusOK)
		list := decodeList(t, w)
		require.Len(t, list, 2)
		titles := []any{list[0]["title"], list[1]["title"]}
		assert.Contains(t, titles, "Thai curry")
		assert.Contains(t, titles, "Aubergine bake")
		assert.NotContains(t, titles, "Fish and chips")
	})

	t.Run("tags and ingredients intersect", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipe/recipes/?tags=%d,%d&ingredients=%d", vegan.ID, veg.ID, prawns.ID)
		w := env.doJSON(t, http.MethodGet, path, tok, nil)
		mustStatus(t, w, http.StatusOK)
		list := decodeList(t, w)
		require.Len(t, list, 1)
		assert.Equal(t, "Thai curry", list[0]["title"])
	})

	t.Run("no filter returns all", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/api/recipe/recipes/", tok, nil)
		mustStatus(t, w, http.StatusOK)
		assert.Len(t, decodeList(t, w), 3)
	})

	t.Run("malformed ids", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/api/recipe/recipes/?tags=abc", tok, nil)
		mustStatus(t, w, http.StatusBadRequest)
	})
}

func TestRecipeDetail(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "detail@example.com", "testpass123")
	other := env.createUser(t, "other2@example.com", "testpass123")
	tok := env.token(t, u)

	mine := seedRecipe(t, env, u, "Mine")
	theirs := seedRecipe(t, env, other, "Theirs")

	t.Run("own recipe", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/recipe/recipes/%d/", mine.ID), tok, nil)
		mustStatus(t, w, http.StatusOK)
		body := decodeBody(t, w)
		assert.Equal(t, "Mine", body["title"])
		assert.Equal(t, "Sample description", body["description"])
		assert.Contains(t, body, "image")
	})

	t.Run("other user's recipe is 404", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/recipe/recipes/%d/", theirs.ID), tok, nil)
		mustStatus(t, w, http.StatusNotFound)
	})

	t.Run("missing id is 404", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/api/recipe/recipes/99999/", tok, nil)
		mustStatus(t, w, http.StatusNotFound)
	})
}

func TestUpdateRecipe(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "upd@example.com", "testpass123")
	other := env.createUser(t, "other3@example.com", "testpass123")
	tok := env.token(t, u)

	t.Run("partial update changes only title", func(t *testing.T) {
		rec := seedRecipe(t, env, u, "Old title")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"title": "New title",
		})
		mustStatus(t, w, http.StatusOK)

		var got domain.Recipe
		require.NoError(t, env.db.First(&got, rec.ID).Error)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, 22, got.TimeMinutes)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("5.25")))
		assert.Equal(t, "http://example.com/recipe.pdf", got.Link)
	})

	t.Run("owner is immutable", func(t *testing.T) {
		rec := seedRecipe(t, env, u, "Owned")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"user":    other.ID,
			"user_id": other.ID,
			"title":   "Still owned",
		})
		mustStatus(t, w, http.StatusOK)

		var got domain.Recipe
		require.NoError(t, env.db.First(&got, rec.ID).Error)
		assert.Equal(t, u.ID, got.UserID)
	})

	t.Run("update other user's recipe is 404", func(t *testing.T) {
		rec := seedRecipe(t, env, other, "Not yours")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"title": "Hijack",
		})
		mustStatus(t, w, http.StatusNotFound)
	})

	t.Run("put full replace of scalars", func(t *testing.T) {
		rec := seedRecipe(t, env, u, "Put me")
		w := env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"title":        "Put done",
			"time_minutes": 10,
			"price":        "2.50",
			"description":  "Replaced",
			"link":         "http://example.com/new.pdf",
		})
		mustStatus(t, w, http.StatusOK)

		var got domain.Recipe
		require.NoError(t, env.db.First(&got, rec.ID).Error)
		assert.Equal(t, "Put done", got.Title)
		assert.Equal(t, 10, got.TimeMinutes)
		assert.Equal(t, "Replaced", got.Description)
	})
}

func TestUpdateRecipeTagsTernary(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "ternary@example.com", "testpass123")
	tok := env.token(t, u)

	newTagged := func(t *testing.T, title string) *domain.Recipe {
		rec := seedRecipe(t, env, u, title)
		tag := &domain.Tag{UserID: u.ID, Name: "Breakfast-" + title}
		require.NoError(t, env.db.Create(tag).Error)
		require.NoError(t, env.db.Model(rec).Association("Tags").Append(tag))
		return rec
	}

	tagCount := func(rec *domain.Recipe) int64 {
		return env.db.Model(rec).Association("Tags").Count()
	}

	t.Run("absent leaves tags untouched", func(t *testing.T) {
		rec := newTagged(t, "keep")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"title": "keep 2",
		})
		mustStatus(t, w, http.StatusOK)
		assert.EqualValues(t, 1, tagCount(rec))
	})

	t.Run("empty list clears tags", func(t *testing.T) {
		rec := newTagged(t, "clear")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"tags": []map[string]any{},
		})
		mustStatus(t, w, http.StatusOK)
		assert.EqualValues(t, 0, tagCount(rec))
		// tag 行本身还在
		var count int64
		env.db.Model(&domain.Tag{}).Where("user_id = ? AND name = ?", u.ID, "Breakfast-clear").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("non-empty list replaces tags", func(t *testing.T) {
		rec := newTagged(t, "replace")
		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"tags": []map[string]any{{"name": "Lunch"}},
		})
		mustStatus(t, w, http.StatusOK)

		var got []domain.Tag
		require.NoError(t, env.db.Model(rec).Association("Tags").Find(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "Lunch", got[0].Name)
	})

	t.Run("replace reuses existing tag row", func(t *testing.T) {
		rec := newTagged(t, "reuse")
		existing := &domain.Tag{UserID: u.ID, Name: "Dessert"}
		require.NoError(t, env.db.Create(existing).Error)

		w := env.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, map[string]any{
			"tags": []map[string]any{{"name": "Dessert"}},
		})
		mustStatus(t, w, http.StatusOK)

		var got []domain.Tag
		require.NoError(t, env.db.Model(rec).Association("Tags").Find(&got))
		require.Len(t, got, 1)
		assert.Equal(t, existing.ID, got[0].ID)
	})
}

func TestDeleteRecipe(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "del@example.com", "testpass123")
	other := env.createUser(t, "other4@example.com", "testpass123")
	tok := env.token(t, u)

	t.Run("own recipe", func(t *testing.T) {
		rec := seedRecipe(t, env, u, "Doomed")
		w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, nil)
		mustStatus(t, w, http.StatusNoContent)

		var count int64
		env.db.Model(&domain.Recipe{}).Where("id = ?", rec.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("other user's recipe is 404 and survives", func(t *testing.T) {
		rec := seedRecipe(t, env, other, "Safe")
		w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/recipe/recipes/%d/", rec.ID), tok, nil)
		mustStatus(t, w, http.StatusNotFound)

		var count int64
		env.db.Model(&domain.Recipe{}).Where("id = ?", rec.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})
}

// 关联落库失败时整个创建要回滚，不能留下孤儿 recipe
func TestCreateRecipeRollsBackOnLinkFailure(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "rollback@example.com", "testpass123")
	tok := env.token(t, u)

	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("refuse_join", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_tags" {
			tx.AddError(errors.New("join insert refused"))
		}
	}))
	defer env.db.Callback().Create().Remove("refuse_join")

	w := env.doJSON(t, http.MethodPost, "/api/recipe/recipes/", tok, map[string]any{
		"title":        "Doomed",
		"time_minutes": 5,
		"price":        "1.00",
		"tags":         []map[string]any{{"name": "Broken"}},
	})
	mustStatus(t, w, http.StatusInternalServerError)

	var n int64
	require.NoError(t, env.db.Model(&domain.Recipe{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.Zero(t, n)
}
