package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-recipe-api/internal/repo"
	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
)

type IngredientHandler struct {
	log         *zap.Logger
	ingredients *repo.IngredientRepo
}

func NewIngredientHandler(l *zap.Logger, ingredients *repo.IngredientRepo) *IngredientHandler {
	return &IngredientHandler{log: l, ingredients: ingredients}
}

func (h *IngredientHandler) Mount(g *gin.RouterGroup) {
	g.GET("/ingredients/", h.list)
	g.GET("/ingredients/:id/", h.detail)
	g.PATCH("/ingredients/:id/", h.update)
	g.DELETE("/ingredients/:id/", h.remove)
}

func (h *IngredientHandler) list(c *gin.Context) {
	ings, err := h.ingredients.List(c.Request.Context(), mdw.UserID(c), assignedOnlyParam(c))
	if err != nil {
		h.log.Error("list ingredients", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, ings)
}

func (h *IngredientHandler) detail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	ing, err := h.ingredients.FindByID(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("get ingredient", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if ing == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	ing, err := h.ingredients.FindByID(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("get ingredient", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if ing == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}

	var in nameRef
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	if err := h.ingredients.Rename(c.Request.Context(), ing, in.Name); err != nil {
		if repo.IsDupKey(err) {
			resp.Fields(c, http.StatusBadRequest, map[string]string{"name": "ingredient with this name already exists"})
			return
		}
		h.log.Error("rename ingredient", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	deleted, err := h.ingredients.Delete(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("delete ingredient", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	c.Status(http.StatusNoContent)
}
