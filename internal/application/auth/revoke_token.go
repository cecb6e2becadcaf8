package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EthanQC/auth-center/internal/application/service"
	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/ports/out"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
	"github.com/EthanQC/auth-center/pkg/jwt"
	"github.com/EthanQC/auth-center/pkg/zlog"
)

// RevokeTokenUseCase 登出：撤销 AccessToken 及其所属链，踢掉该身份全部会话
type RevokeTokenUseCase struct {
	RefreshRepo out.RefreshTokenRepository
	Store       out.RevocationStore
	Registry    *service.SessionRegistry
	Publisher   out.EventPublisher
	JWTManager  jwt.Manager
	RefreshTTL  time.Duration
}

func NewRevokeTokenUseCase(
	refreshRepo out.RefreshTokenRepository,
	store out.RevocationStore,
	registry *service.SessionRegistry,
	publisher out.EventPublisher,
	jwtMgr jwt.Manager,
	refreshTTL time.Duration,
) *RevokeTokenUseCase {
	return &RevokeTokenUseCase{
		RefreshRepo: refreshRepo,
		Store:       store,
		Registry:    registry,
		Publisher:   publisher,
		JWTManager:  jwtMgr,
		RefreshTTL:  refreshTTL,
	}
}

func (uc *RevokeTokenUseCase) Execute(ctx context.Context, accessToken string) error {
	claims, err := uc.JWTManager.Parse(accessToken)
	if err != nil {
		return fmt.Errorf("解析 AccessToken 失败: %w", err)
	}
	if claims.Kind != jwt.KindAccess {
		return autherr.ErrWrongTokenKind
	}

	// 撤销必须持久化成功，写路径出错直接报错，不允许静默丢弃
	if err := uc.Store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}

	until := time.Now().Add(uc.RefreshTTL)
	if claims.Cid != "" {
		if err := uc.Store.RevokeChain(ctx, claims.Cid, until); err != nil {
			return fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
		}
		jtis, err := uc.RefreshRepo.RevokeChain(ctx, claims.Cid)
		if err != nil {
			return fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
		}
		for _, jti := range jtis {
			if err := uc.Store.Revoke(ctx, jti, until); err != nil {
				return fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
			}
		}
	}

	uc.Registry.EvictAll(ctx, claims.Subject)

	if uc.Publisher != nil {
		ev := entity.NewEvictEvent(claims.Subject, entity.EvictReasonLogout)
		if err := uc.Publisher.Publish(ctx, claims.Subject, ev.Marshal()); err != nil {
			zlog.C(ctx).Error("publish evict event failed",
				zap.String("user_id", claims.Subject), zap.Error(err))
		}
	}

	zlog.C(ctx).Info("user logged out",
		zap.String("user_id", claims.Subject),
		zap.String("chain_id", claims.Cid))
	return nil
}
