package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/ports/out"
	"github.com/EthanQC/auth-center/pkg/jwt"
)

// GenerateTokenUseCase 签发一对 Access/Refresh Token 并持久化 Refresh 链记录
type GenerateTokenUseCase struct {
	RefreshRepo out.RefreshTokenRepository
	JWTManager  jwt.Manager
}

func NewGenerateTokenUseCase(refreshRepo out.RefreshTokenRepository, jwtMgr jwt.Manager) *GenerateTokenUseCase {
	return &GenerateTokenUseCase{RefreshRepo: refreshRepo, JWTManager: jwtMgr}
}

// Execute 在给定轮换链下签发新令牌对；登录时传入新链 ID，刷新时沿用旧链 ID
func (uc *GenerateTokenUseCase) Execute(ctx context.Context, userID string, roles []string, chainID string) (*entity.TokenPair, error) {
	access, accessClaims, err := uc.JWTManager.Issue(userID, roles, chainID, jwt.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("生成 AccessToken 失败: %w", err)
	}

	refresh, refreshClaims, err := uc.JWTManager.Issue(userID, roles, chainID, jwt.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("生成 RefreshToken 失败: %w", err)
	}

	rec := &entity.RefreshTokenRecord{
		JTI:       refreshClaims.ID,
		ChainID:   chainID,
		UserID:    userID,
		IssuedAt:  refreshClaims.IssuedAt.Time,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
	}
	if err := uc.RefreshRepo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("保存 RefreshToken 记录失败: %w", err)
	}

	return &entity.TokenPair{
		UserID:           userID,
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int64(time.Until(accessClaims.ExpiresAt.Time).Seconds()),
		RefreshExpiresIn: int64(time.Until(refreshClaims.ExpiresAt.Time).Seconds()),
	}, nil
}
