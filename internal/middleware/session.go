package middleware

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware 为没带 X-Session-ID 的请求生成一次性会话ID。
// 每个请求自成会话，配速对这类客户端退化为单请求额度。
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(util.SessionIDHeader) == "" {
			c.Set("fallback_session_id", model.GenerateSessionID())
		}
		c.Next()
	}
}
