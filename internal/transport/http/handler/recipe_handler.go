package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-recipe-api/internal/core/cache"
	"go-recipe-api/internal/domain"
	"go-recipe-api/internal/repo"
	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
)

type RecipeHandler struct {
	log       *zap.Logger
	recipes   *repo.RecipeRepo
	cache     *cache.Cache // 可为 nil（未启用 redis）
	cacheTTL  time.Duration
	mediaURL  string
	mediaRoot string
}

func NewRecipeHandler(
	l *zap.Logger,
	recipes *repo.RecipeRepo,
	cch *cache.Cache,
	cacheTTL time.Duration,
	mediaRoot, mediaURL string,
) *RecipeHandler {
	return &RecipeHandler{
		log: l, recipes: recipes,
		cache: cch, cacheTTL: cacheTTL,
		mediaRoot: mediaRoot, mediaURL: mediaURL,
	}
}

func (h *RecipeHandler) Mount(g *gin.RouterGroup) {
	g.GET("/recipes/", h.list)
	g.POST("/recipes/", h.create)
	g.GET("/recipes/:id/", h.detail)
	g.PUT("/recipes/:id/", h.update)
	g.PATCH("/recipes/:id/", h.update)
	g.DELETE("/recipes/:id/", h.remove)
	g.POST("/recipes/:id/upload-image/", h.uploadImage)
}

func recipeCacheKey(uid, id uint) string { return fmt.Sprintf("recipe:%d:%d", uid, id) }

func (h *RecipeHandler) list(c *gin.Context) {
	uid := mdw.UserID(c)

	tagIDs, err := idListParam(c.Query("tags"))
	if err != nil {
		resp.Detail(c, http.StatusBadRequest, "tags must be a comma-separated list of ids")
		return
	}
	ingIDs, err := idListParam(c.Query("ingredients"))
	if err != nil {
		resp.Detail(c, http.StatusBadRequest, "ingredients must be a comma-separated list of ids")
		return
	}

	recs, err := h.recipes.List(c.Request.Context(), uid, domain.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingIDs,
	})
	if err != nil {
		h.log.Error("list recipes", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, serializeRecipeList(recs))
}

func (h *RecipeHandler) create(c *gin.Context) {
	uid := mdw.UserID(c)

	var in recipeIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	if fields := requireCreateFields(&in); len(fields) > 0 {
		resp.Fields(c, http.StatusBadRequest, fields)
		return
	}

	rec := domain.Recipe{
		UserID:      uid,
		Title:       *in.Title,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}
	if in.Link != nil {
		rec.Link = *in.Link
	}

	ctx := c.Request.Context()
	// 主行和关联同一事务落库，关联失败不留孤儿 recipe
	err := h.recipes.InTx(ctx, func(recipes *repo.RecipeRepo, tags *repo.TagRepo, ings *repo.IngredientRepo) error {
		if err := recipes.Create(ctx, &rec); err != nil {
			return err
		}
		return applyRelations(ctx, recipes, tags, ings, uid, &rec, in.Tags, in.Ingredients)
	})
	if err != nil {
		h.log.Error("create recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	full, err := h.recipes.FindByID(ctx, uid, rec.ID)
	if err != nil || full == nil {
		h.log.Error("reload recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusCreated, serializeRecipeDetail(full, h.mediaURL))
}

// requireCreateFields 创建时必填的标量字段
func requireCreateFields(in *recipeIn) map[string]string {
	fields := map[string]string{}
	if in.Title == nil {
		fields["title"] = "this field is required"
	}
	if in.TimeMinutes == nil {
		fields["time_minutes"] = "this field is required"
	}
	if in.Price == nil {
		fields["price"] = "this field is required"
	} else if in.Price.IsNegative() {
		fields["price"] = "ensure this value is greater than or equal to 0"
	}
	return fields
}

// applyRelations 三态：nil 不动，空列表清空，非空全量替换。
// get-or-create 以请求用户为 owner，不存在的名字会顺手建新行。
func applyRelations(
	ctx context.Context,
	recipes *repo.RecipeRepo, tags *repo.TagRepo, ings *repo.IngredientRepo,
	uid uint, rec *domain.Recipe, tagRefs, ingRefs *[]nameRef,
) error {
	if tagRefs != nil {
		resolved := make([]domain.Tag, 0, len(*tagRefs))
		for _, ref := range *tagRefs {
			t, err := tags.GetOrCreate(ctx, uid, ref.Name)
			if err != nil {
				return err
			}
			resolved = append(resolved, *t)
		}
		if err := recipes.ReplaceTags(ctx, rec, resolved); err != nil {
			return err
		}
	}
	if ingRefs != nil {
		resolved := make([]domain.Ingredient, 0, len(*ingRefs))
		for _, ref := range *ingRefs {
			ing, err := ings.GetOrCreate(ctx, uid, ref.Name)
			if err != nil {
				return err
			}
			resolved = append(resolved, *ing)
		}
		if err := recipes.ReplaceIngredients(ctx, rec, resolved); err != nil {
			return err
		}
	}
	return nil
}

func (h *RecipeHandler) detail(c *gin.Context) {
	uid := mdw.UserID(c)
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	ctx := c.Request.Context()

	var rec *domain.Recipe
	var err error
	if h.cache != nil {
		rec, err = cache.GetOrLoadJSON[domain.Recipe](h.cache, ctx, recipeCacheKey(uid, id), h.cacheTTL,
			func(ctx context.Context) (*domain.Recipe, error) {
				return h.recipes.FindByID(ctx, uid, id)
			})
	} else {
		rec, err = h.recipes.FindByID(ctx, uid, id)
	}
	if err != nil {
		h.log.Error("get recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, serializeRecipeDetail(rec, h.mediaURL))
}

func (h *RecipeHandler) update(c *gin.Context) {
	uid := mdw.UserID(c)
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	ctx := c.Request.Context()

	rec, err := h.recipes.FindByID(ctx, uid, id)
	if err != nil {
		h.log.Error("get recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}

	var in recipeIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	if in.Price != nil && in.Price.IsNegative() {
		resp.Fields(c, http.StatusBadRequest, map[string]string{
			"price": "ensure this value is greater than or equal to 0",
		})
		return
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.TimeMinutes != nil {
		fields["time_minutes"] = *in.TimeMinutes
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Link != nil {
		fields["link"] = *in.Link
	}
	err = h.recipes.InTx(ctx, func(recipes *repo.RecipeRepo, tags *repo.TagRepo, ings *repo.IngredientRepo) error {
		if err := recipes.UpdateFields(ctx, rec, fields); err != nil {
			return err
		}
		return applyRelations(ctx, recipes, tags, ings, uid, rec, in.Tags, in.Ingredients)
	})
	if err != nil {
		h.log.Error("update recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	h.invalidate(c, uid, id)

	full, err := h.recipes.FindByID(ctx, uid, id)
	if err != nil || full == nil {
		h.log.Error("reload recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, serializeRecipeDetail(full, h.mediaURL))
}

func (h *RecipeHandler) remove(c *gin.Context) {
	uid := mdw.UserID(c)
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	deleted, err := h.recipes.Delete(c.Request.Context(), uid, id)
	if err != nil {
		h.log.Error("delete recipe", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	h.invalidate(c, uid, id)
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) invalidate(c *gin.Context, uid, id uint) {
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), recipeCacheKey(uid, id))
	}
}
