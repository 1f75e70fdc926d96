package response

import "github.com/gin-gonic/gin"

// Detail 非字段级错误，如 {"detail": "not found"}
func Detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// Fields 字段级校验错误，如 {"email": "user with this email already exists"}
func Fields(c *gin.Context, status int, fields map[string]string) {
	body := make(gin.H, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func AbortDetail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}
