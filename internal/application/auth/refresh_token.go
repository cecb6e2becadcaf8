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

// RefreshTokenUseCase 用旧 RefreshToken 换发新令牌对。
// 同一条链上的轮换由 RevocationStore 的原子抢占串行化：并发刷新只有一个赢家。
// 被取代的令牌再次出现即视为复用，撤销整条链并踢掉该身份的全部会话。
type RefreshTokenUseCase struct {
	Generator   *GenerateTokenUseCase
	RefreshRepo out.RefreshTokenRepository
	Store       out.RevocationStore
	Registry    *service.SessionRegistry
	Publisher   out.EventPublisher
	JWTManager  jwt.Manager
	RefreshTTL  time.Duration
}

func NewRefreshTokenUseCase(
	generator *GenerateTokenUseCase,
	refreshRepo out.RefreshTokenRepository,
	store out.RevocationStore,
	registry *service.SessionRegistry,
	publisher out.EventPublisher,
	jwtMgr jwt.Manager,
	refreshTTL time.Duration,
) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		Generator:   generator,
		RefreshRepo: refreshRepo,
		Store:       store,
		Registry:    registry,
		Publisher:   publisher,
		JWTManager:  jwtMgr,
		RefreshTTL:  refreshTTL,
	}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	claims, err := uc.JWTManager.Parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("解析 RefreshToken 失败: %w", err)
	}
	if claims.Kind != jwt.KindRefresh {
		return nil, autherr.ErrWrongTokenKind
	}

	revoked, err := uc.Store.IsRevoked(ctx, claims.ID, claims.Cid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}

	rec, err := uc.RefreshRepo.FindByJTI(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}
	if rec == nil {
		// 验签通过却查无记录，按撤销处理（fail closed）
		return nil, autherr.ErrTokenRevoked
	}
	if rec.Revoked {
		// 链已进入终态
		return nil, autherr.ErrChainRevoked
	}
	if revoked || rec.Rotated {
		// 被取代的令牌再次出现：复用信号，整链作废
		return nil, uc.handleReuse(ctx, claims)
	}
	if rec.IsExpired() {
		return nil, autherr.ErrTokenExpired
	}

	// 已取消的请求不再落任何状态
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 抢占本链上这枚令牌的轮换权，并发刷新只允许一个成功
	won, err := uc.Store.TryRotate(ctx, claims.Cid, claims.ID, uc.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}
	if !won {
		return nil, uc.handleReuse(ctx, claims)
	}

	// 抢占成功后轮换必须一次做完：这里被取消会留下孤儿抢占标记，
	// 合法客户端重试同一枚令牌就会被误判为复用
	ctx = context.WithoutCancel(ctx)

	// 旧令牌立刻失效，撤销条目随其自然过期自清理
	if err := uc.Store.Revoke(ctx, claims.ID, rec.ExpiresAt); err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrStoreUnavailable, err)
	}
	if err := uc.RefreshRepo.MarkRotated(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("标记轮换失败: %w", err)
	}

	pair, err := uc.Generator.Execute(ctx, claims.Subject, claims.Roles, claims.Cid)
	if err != nil {
		return nil, fmt.Errorf("换发令牌失败: %w", err)
	}

	zlog.C(ctx).Info("refresh token rotated",
		zap.String("user_id", claims.Subject),
		zap.String("chain_id", claims.Cid))
	return pair, nil
}

// handleReuse 复用防御：撤销整条链及链上全部令牌，踢掉该身份所有会话，
// 并广播事件让其它节点同步下线
func (uc *RefreshTokenUseCase) handleReuse(ctx context.Context, claims *jwt.Claims) error {
	until := time.Now().Add(uc.RefreshTTL)

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

	uc.Registry.EvictAll(ctx, claims.Subject)

	ev := entity.NewEvictEvent(claims.Subject, entity.EvictReasonReuse)
	if uc.Publisher != nil {
		if err := uc.Publisher.Publish(ctx, claims.Subject, ev.Marshal()); err != nil {
			zlog.C(ctx).Error("publish evict event failed",
				zap.String("user_id", claims.Subject), zap.Error(err))
		}
	}

	zlog.C(ctx).Warn("refresh token reuse detected, chain revoked",
		zap.String("user_id", claims.Subject),
		zap.String("chain_id", claims.Cid))
	return autherr.ErrTokenReuse
}
