package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/domain/vo"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
	"github.com/EthanQC/auth-center/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthUC 按需填充各入口的实现，未填充的入口被调用时直接 panic 兜底
type stubAuthUC struct {
	login   func(ctx context.Context, username, password string) (*entity.TokenPair, error)
	refresh func(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	logout  func(ctx context.Context, accessToken string) error
	verify  func(ctx context.Context, token string) (*jwt.Claims, error)
}

func (s *stubAuthUC) Login(ctx context.Context, username, password string) (*entity.TokenPair, error) {
	if s.login == nil {
		panic("not used")
	}
	return s.login(ctx, username, password)
}

func (s *stubAuthUC) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	if s.refresh == nil {
		panic("not used")
	}
	return s.refresh(ctx, refreshToken)
}

func (s *stubAuthUC) Logout(ctx context.Context, accessToken string) error {
	if s.logout == nil {
		panic("not used")
	}
	return s.logout(ctx, accessToken)
}

func (s *stubAuthUC) Verify(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	if s.verify == nil {
		panic("not used")
	}
	return s.verify(ctx, accessToken)
}

func okClaims(userID string, roles ...string) *jwt.Claims {
	c := &jwt.Claims{Roles: roles, Kind: jwt.KindAccess}
	c.Subject = userID
	return c
}

func newRouter(uc *stubAuthUC, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(uc)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"roles": claims.Roles})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	uc := &stubAuthUC{verify: func(ctx context.Context, token string) (*jwt.Claims, error) {
		if token == "good" {
			return okClaims("u1", "USER"), nil
		}
		return nil, autherr.ErrTokenRevoked
	}}
	r := newRouter(uc)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少头", "", http.StatusUnauthorized},
		{"非 Bearer", "Basic abc", http.StatusUnauthorized},
		{"令牌无效", "Bearer bad", http.StatusUnauthorized},
		{"令牌有效", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doGet(r, tc.header); w.Code != tc.want {
				t.Errorf("code = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

// 拒绝响应不得区分"哪一步失败"
func TestAuthRequiredOpaqueBody(t *testing.T) {
	reasons := []error{
		autherr.ErrMalformedToken,
		autherr.ErrSignatureInvalid,
		autherr.ErrTokenExpired,
		autherr.ErrTokenRevoked,
	}
	var bodies []string
	for _, reason := range reasons {
		uc := &stubAuthUC{verify: func(ctx context.Context, token string) (*jwt.Claims, error) {
			return nil, reason
		}}
		w := doGet(newRouter(uc), "Bearer whatever")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%v: code = %d", reason, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("不同失败原因返回了不同响应体: %q vs %q", bodies[0], bodies[i])
		}
	}
}

// 撤销存储不可用返回 503 而不是 401
func TestAuthRequiredStoreUnavailable(t *testing.T) {
	uc := &stubAuthUC{verify: func(ctx context.Context, token string) (*jwt.Claims, error) {
		return nil, fmt.Errorf("%w: redis timeout", autherr.ErrStoreUnavailable)
	}}
	if w := doGet(newRouter(uc), "Bearer any"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	uc := &stubAuthUC{verify: func(ctx context.Context, token string) (*jwt.Claims, error) {
		if token == "admin" {
			return okClaims("u1", "USER", "ADMIN"), nil
		}
		return okClaims("u2", "USER"), nil
	}}
	r := newRouter(uc, RequireRole(vo.RoleAdmin))

	if w := doGet(r, "Bearer admin"); w.Code != http.StatusOK {
		t.Errorf("管理员 code = %d, want 200", w.Code)
	}
	if w := doGet(r, "Bearer user"); w.Code != http.StatusForbidden {
		t.Errorf("普通用户 code = %d, want 403", w.Code)
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer  abc", "abc"},
		{"Token abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := ExtractBearer(req); got != tc.want {
			t.Errorf("ExtractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
