package in

import (
	"context"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/pkg/jwt"
)

// AuthUseCase 认证核心入口：登录、刷新、登出、校验
type AuthUseCase interface {
	// Login 核验凭证并开启一条新的轮换链
	Login(ctx context.Context, username, password string) (*entity.TokenPair, error)

	// Refresh 用 RefreshToken 换新令牌对；复用被取代的令牌会撤销整条链并踢掉全部会话
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error)

	// Logout 撤销该 AccessToken 及其所属链，并踢掉该身份的全部会话
	Logout(ctx context.Context, accessToken string) error

	// Verify 校验 AccessToken：验签 + 撤销检查，成功返回 claims
	Verify(ctx context.Context, accessToken string) (*jwt.Claims, error)
}
