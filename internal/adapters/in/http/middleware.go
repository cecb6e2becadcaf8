package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EthanQC/auth-center/internal/domain/vo"
	"github.com/EthanQC/auth-center/internal/ports/in"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
	"github.com/EthanQC/auth-center/pkg/jwt"
)

// ClaimsKey 认证通过后 claims 在 gin ctx 里的键
const ClaimsKey = "auth.claims"

// 对外只暴露"认证失败"，不泄露具体是哪一步失败
var unauthorizedBody = gin.H{"error": "authentication failed"}

// AuthRequired 拦截所有需要认证的入口：提取 Bearer 令牌，验签 + 撤销检查。
// 撤销存储不可用时返回 503 而不是 401，调用方可以退避重试，但绝不放行。
func AuthRequired(authUC in.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearer(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}

		claims, err := authUC.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, autherr.ErrStoreUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole 在 AuthRequired 之后使用，校验角色
func RequireRole(role vo.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}
		for _, r := range claims.Roles {
			if r == string(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

// ClaimsFrom 取出认证通过的 claims，未认证返回 nil
func ClaimsFrom(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// ExtractBearer 从 Authorization 头提取 Bearer 令牌
func ExtractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
