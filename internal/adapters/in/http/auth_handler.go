package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EthanQC/auth-center/internal/domain/vo"
	"github.com/EthanQC/auth-center/internal/metrics"
	"github.com/EthanQC/auth-center/internal/ports/in"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
)

// refreshCookieName RefreshToken 走独立通道：刷新端点的请求体，或 httpOnly cookie，
// 绝不出现在普通请求的 Authorization 头里
const refreshCookieName = "refresh_token"

type AuthHandler struct {
	authUC      in.AuthUseCase
	broadcaster in.BroadcastUseCase
}

func NewAuthHandler(authUC in.AuthUseCase, broadcaster in.BroadcastUseCase) *AuthHandler {
	return &AuthHandler{authUC: authUC, broadcaster: broadcaster}
}

// RegisterRoutes 挂载认证相关路由
func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/auth")
	api.POST("/login", h.login)
	api.POST("/refresh", h.refresh)

	authed := api.Group("", AuthRequired(h.authUC))
	authed.POST("/logout", h.logout)
	authed.GET("/me", h.me)

	// 内部推送入口，仅管理员可用
	r.POST("/api/events/push", AuthRequired(h.authUC), RequireRole(vo.RoleAdmin), h.push)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.authUC.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("login", "fail").Inc()
		h.writeAuthError(c, err)
		return
	}
	metrics.AuthTotal.WithLabelValues("login", "ok").Inc()
	metrics.IssuedTokens.WithLabelValues("access").Inc()
	metrics.IssuedTokens.WithLabelValues("refresh").Inc()

	// RefreshToken 同时写入 httpOnly cookie，浏览器端可以不用自己保存。
	// cookie 有效期跟 RefreshToken 本身的 TTL 走，不能用 AccessToken 的
	c.SetCookie(refreshCookieName, pair.RefreshToken, int(pair.RefreshExpiresIn), "/api/auth/refresh", "", true, true)
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		if v, err := c.Cookie(refreshCookieName); err == nil {
			token = v
		}
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.authUC.Refresh(c.Request.Context(), token)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("refresh", "fail").Inc()
		h.writeAuthError(c, err)
		return
	}
	metrics.AuthTotal.WithLabelValues("refresh", "ok").Inc()
	metrics.IssuedTokens.WithLabelValues("access").Inc()
	metrics.IssuedTokens.WithLabelValues("refresh").Inc()

	c.SetCookie(refreshCookieName, pair.RefreshToken, int(pair.RefreshExpiresIn), "/api/auth/refresh", "", true, true)
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) logout(c *gin.Context) {
	token := ExtractBearer(c.Request)
	if err := h.authUC.Logout(c.Request.Context(), token); err != nil {
		metrics.AuthTotal.WithLabelValues("logout", "fail").Inc()
		h.writeAuthError(c, err)
		return
	}
	metrics.AuthTotal.WithLabelValues("logout", "ok").Inc()
	c.SetCookie(refreshCookieName, "", -1, "/api/auth/refresh", "", true, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	claims := ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, unauthorizedBody)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": claims.Subject,
		"roles":   claims.Roles,
		"exp":     claims.ExpiresAt.Unix(),
	})
}

func (h *AuthHandler) push(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Event  string `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	n := h.broadcaster.Publish(c.Request.Context(), req.UserID, []byte(req.Event))
	c.JSON(http.StatusOK, gin.H{"delivered": n})
}

// writeAuthError 统一出错口径：存储不可用给 503，其余一律 401，不泄露细节
func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	if errors.Is(err, autherr.ErrStoreUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	c.JSON(http.StatusUnauthorized, unauthorizedBody)
}
