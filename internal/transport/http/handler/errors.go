package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindFieldErrors 把 binding 校验错误压成 字段→消息，非校验错误归到 detail
func bindFieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := toSnake(fe.Field())
			switch fe.Tag() {
			case "required":
				out[field] = "this field is required"
			case "email":
				out[field] = "enter a valid email address"
			case "min":
				out[field] = "ensure this field has at least " + fe.Param() + " characters"
			case "max":
				out[field] = "ensure this field has no more than " + fe.Param() + " characters"
			case "gte":
				out[field] = "ensure this value is greater than or equal to " + fe.Param()
			default:
				out[field] = "invalid value"
			}
		}
		return out
	}
	out["detail"] = err.Error()
	return out
}

// bindStatus chunked 超限请求体直到 bind 读流时才暴露，要还原成 413
func bindStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pathID :id 路径参数；非法值与不存在的行同样表现为 404
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// idListParam 逗号分隔的 id 列表（如 tags=1,2,3），空串→nil
func idListParam(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(v))
	}
	return ids, nil
}
