package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
)

// uploadImage multipart 字段名固定为 image；内容嗅探，非图片直接 400。
// 文件落在 media root 下，文件名用 uuid，旧文件尽力删除。
func (h *RecipeHandler) uploadImage(c *gin.Context) {
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

	fh, err := c.FormFile("image")
	if err != nil {
		resp.Fields(c, http.StatusBadRequest, map[string]string{"image": "no image provided"})
		return
	}
	ext, ok := sniffImageExt(fh)
	if !ok {
		resp.Fields(c, http.StatusBadRequest, map[string]string{"image": "upload a valid image"})
		return
	}

	rel := filepath.Join("uploads", "recipe", uuid.NewString()+ext)
	dst := filepath.Join(h.mediaRoot, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		h.log.Error("mkdir media", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		h.log.Error("save image", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	old := rec.Image
	rel = filepath.ToSlash(rel)
	if err := h.recipes.UpdateFields(ctx, rec, map[string]any{"image": rel}); err != nil {
		h.log.Error("update image", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if old != "" && old != rel {
		_ = os.Remove(filepath.Join(h.mediaRoot, filepath.FromSlash(old)))
	}
	h.invalidate(c, uid, id)

	url := h.mediaURL + "/" + rel
	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "image": url})
}

// sniffImageExt 读前 512 字节判断 content type，返回落盘扩展名
func sniffImageExt(fh *multipart.FileHeader) (string, bool) {
	f, err := fh.Open()
	if err != nil {
		return "", false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", false
	}
	ct := http.DetectContentType(buf[:n])
	if !strings.HasPrefix(ct, "image/") {
		return "", false
	}

	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != "" {
		return ext, true
	}
	switch ct {
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	default:
		return ".jpg", true
	}
}
