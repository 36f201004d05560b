// Package http 认证相关的页面与接口：登录、新密码质询、登出
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/auth/application"
	"github.com/wyfcoding/alphaview/pkg/logger"
	"github.com/wyfcoding/alphaview/pkg/metrics"
)

// AuthHandler 认证 HTTP 处理器
type AuthHandler struct {
	auth         *application.AuthService
	metrics      *metrics.Metrics
	secureCookie bool
}

// NewAuthHandler 创建认证 HTTP 处理器
// secureCookie 控制会话 cookie 是否仅在 HTTPS 下发送
func NewAuthHandler(auth *application.AuthService, m *metrics.Metrics, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m, secureCookie: secureCookie}
}

// RegisterRoutes 注册路由，登录与质询接口带限流防爆破
func (h *AuthHandler) RegisterRoutes(router *gin.Engine, rateLimit gin.HandlerFunc) {
	router.GET("/", h.Index)
	router.POST("/login", rateLimit, h.Login)
	router.POST("/password-challenge", rateLimit, h.CompletePasswordChallenge)
	router.GET("/logout", h.Logout)
}

// Index 首页：已认证渲染仪表盘，否则渲染登录页
func (h *AuthHandler) Index(c *gin.Context) {
	session := CurrentSession(c)
	if session != nil && session.IsAuthenticated() {
		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"Username": session.Username,
			"Role":     string(session.Role),
			"IsAdmin":  session.Role.CanExecuteTrades(),
		})
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login 处理登录表单
// 身份服务返回新密码质询时跳转到质询页，其余错误原样显示在登录页
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "username and password are required"})
		return
	}

	h.metrics.LoginsTotal.Inc()

	result, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		h.metrics.LoginFailuresTotal.Inc()
		logger.Warn(c.Request.Context(), "Login failed", "username", username, "error", err)
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": err.Error()})
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)

	if result.ChallengeRequired {
		c.HTML(http.StatusOK, "password_challenge.html", gin.H{"Username": username})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// CompletePasswordChallenge 处理新密码设置表单
func (h *AuthHandler) CompletePasswordChallenge(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	newPassword := c.PostForm("new_password")
	confirmPassword := c.PostForm("confirm_password")

	session, err := h.auth.CompleteNewPassword(c.Request.Context(), token, newPassword, confirmPassword)
	if err != nil {
		c.HTML(http.StatusBadRequest, "password_challenge.html", gin.H{"Error": err.Error()})
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.Redirect(http.StatusFound, "/")
}

// Logout 登出并清除会话 cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		logger.Warn(c.Request.Context(), "Logout failed", "error", err)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}
