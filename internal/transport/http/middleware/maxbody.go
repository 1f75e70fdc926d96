package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-recipe-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小。带 Content-Length 的直接拒，
// chunked 的由 MaxBytesReader 兜底，在读到超限时从 bind 层冒出来。
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.AbortDetail(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
