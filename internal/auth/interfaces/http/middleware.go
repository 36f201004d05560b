package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/auth/application"
	"github.com/wyfcoding/alphaview/internal/auth/domain"
)

// SessionCookie 会话令牌所在的 cookie 名
const SessionCookie = "alphaview_session"

// 会话在 gin context 中的键
const sessionKey = "session"

// LoadSession 从 cookie 加载会话写入 gin context，不强制登录
func LoadSession(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			session, err := auth.SessionFromToken(c.Request.Context(), token)
			if err == nil && session != nil {
				c.Set(sessionKey, session)
			}
		}
		c.Next()
	}
}

// CurrentSession 取出当前请求的会话，未登录返回 nil
func CurrentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*domain.Session)
	return session
}

// RequireAuthenticated 要求已认证会话，否则返回 401
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil || !session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求 admin 角色，否则返回 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil || !session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !session.Role.CanExecuteTrades() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
