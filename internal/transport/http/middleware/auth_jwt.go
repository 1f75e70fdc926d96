package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-recipe-api/internal/core/auth"
	resp "go-recipe-api/internal/transport/http/response"
)

// CtxUserID 鉴权通过后写入 context 的 uid key
const CtxUserID = "userId"

func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.AbortDetail(c, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.AbortDetail(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(CtxUserID, claims.UID)
		c.Next()
	}
}

// UserID 取当前请求的 uid，0 表示未鉴权
func UserID(c *gin.Context) uint {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0
	}
	uid, _ := v.(uint)
	return uid
}
