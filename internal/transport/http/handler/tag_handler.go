package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-recipe-api/internal/repo"
	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
)

type TagHandler struct {
	log  *zap.Logger
	tags *repo.TagRepo
}

func NewTagHandler(l *zap.Logger, tags *repo.TagRepo) *TagHandler {
	return &TagHandler{log: l, tags: tags}
}

func (h *TagHandler) Mount(g *gin.RouterGroup) {
	g.GET("/tags/", h.list)
	g.GET("/tags/:id/", h.detail)
	g.PATCH("/tags/:id/", h.update)
	g.DELETE("/tags/:id/", h.remove)
}

// assignedOnlyParam 非零整数为真，解析失败按假
func assignedOnlyParam(c *gin.Context) bool {
	v, err := strconv.Atoi(c.DefaultQuery("assigned_only", "0"))
	return err == nil && v != 0
}

func (h *TagHandler) list(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context(), mdw.UserID(c), assignedOnlyParam(c))
	if err != nil {
		h.log.Error("list tags", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) detail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	t, err := h.tags.FindByID(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("get tag", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if t == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TagHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	t, err := h.tags.FindByID(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("get tag", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if t == nil {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}

	var in nameRef
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	if err := h.tags.Rename(c.Request.Context(), t, in.Name); err != nil {
		if repo.IsDupKey(err) {
			resp.Fields(c, http.StatusBadRequest, map[string]string{"name": "tag with this name already exists"})
			return
		}
		h.log.Error("rename tag", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TagHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	deleted, err := h.tags.Delete(c.Request.Context(), mdw.UserID(c), id)
	if err != nil {
		h.log.Error("delete tag", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		resp.Detail(c, http.StatusNotFound, "not found")
		return
	}
	c.Status(http.StatusNoContent)
}
