package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/EthanQC/auth-center/internal/domain/entity"
)

func testPair() *entity.TokenPair {
	return &entity.TokenPair{
		UserID:           "u1",
		AccessToken:      "a1",
		RefreshToken:     "r1",
		ExpiresIn:        900,    // 15m
		RefreshExpiresIn: 604800, // 168h
	}
}

func findRefreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == refreshCookieName {
			return ck
		}
	}
	t.Fatal("响应缺少 refresh_token cookie")
	return nil
}

// cookie 的有效期必须跟 RefreshToken 的 TTL 走：
// 如果跟 AccessToken 走，纯 cookie 客户端会在 access 过期时一并丢掉 refresh
func TestLoginCookieLivesAsLongAsRefreshToken(t *testing.T) {
	uc := &stubAuthUC{login: func(ctx context.Context, username, password string) (*entity.TokenPair, error) {
		return testPair(), nil
	}}
	r := gin.New()
	NewAuthHandler(uc, nil).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"passw0rd"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	ck := findRefreshCookie(t, w)
	if ck.MaxAge != 604800 {
		t.Errorf("cookie Max-Age = %d, want 604800（refresh TTL）", ck.MaxAge)
	}
	if ck.Value != "r1" || ck.Path != "/api/auth/refresh" || !ck.HttpOnly {
		t.Errorf("cookie = %+v", ck)
	}
}

func TestRefreshCookieLivesAsLongAsRefreshToken(t *testing.T) {
	uc := &stubAuthUC{refresh: func(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
		if refreshToken != "r0" {
			t.Errorf("refreshToken = %q", refreshToken)
		}
		return testPair(), nil
	}}
	r := gin.New()
	NewAuthHandler(uc, nil).RegisterRoutes(r)

	// 走 cookie 通道刷新
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "r0"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if ck := findRefreshCookie(t, w); ck.MaxAge != 604800 {
		t.Errorf("cookie Max-Age = %d, want 604800", ck.MaxAge)
	}
}
