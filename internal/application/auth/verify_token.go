package auth

import (
	"context"
	"fmt"

	"github.com/EthanQC/auth-center/internal/ports/out"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
	"github.com/EthanQC/auth-center/pkg/jwt"
)

// VerifyTokenUseCase 校验 AccessToken：验签 → 撤销检查。
// 撤销存储出错时拒绝请求，绝不放行（fail closed）。
type VerifyTokenUseCase struct {
	Store      out.RevocationStore
	JWTManager jwt.Manager
}

func NewVerifyTokenUseCase(store out.RevocationStore, jwtMgr jwt.Manager) *VerifyTokenUseCase {
	return &VerifyTokenUseCase{Store: store, JWTManager: jwtMgr}
}

func (uc *VerifyTokenUseCase) Execute(ctx context.Context, tokenStr string) (*jwt.Claims, error) {
	claims, err := uc.JWTManager.Parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("解析 AccessToken 失败: %w", err)
	}
	if claims.Kind != jwt.KindAccess {
		return nil, autherr.ErrWrongTokenKind
	}

	revoked, err := uc.Store.IsRevoked(ctx, claims.ID, claims.Cid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}
	if revoked {
		return nil, autherr.ErrTokenRevoked
	}
	return claims, nil
}
