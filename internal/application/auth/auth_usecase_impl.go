package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/domain/vo"
	"github.com/EthanQC/auth-center/internal/ports/in"
	"github.com/EthanQC/auth-center/internal/ports/out"
	autherr "github.com/EthanQC/auth-center/pkg/errors"
	"github.com/EthanQC/auth-center/pkg/jwt"
	"github.com/EthanQC/auth-center/pkg/zlog"
)

// DefaultAuthUseCase 组合登录/刷新/登出/校验四个用例
type DefaultAuthUseCase struct {
	userRepo  out.UserRepository
	publisher out.EventPublisher
	generator *GenerateTokenUseCase
	refresher *RefreshTokenUseCase
	revoker   *RevokeTokenUseCase
	verifier  *VerifyTokenUseCase
}

var _ in.AuthUseCase = (*DefaultAuthUseCase)(nil)

func NewDefaultAuthUseCase(
	userRepo out.UserRepository,
	publisher out.EventPublisher,
	generator *GenerateTokenUseCase,
	refresher *RefreshTokenUseCase,
	revoker *RevokeTokenUseCase,
	verifier *VerifyTokenUseCase,
) *DefaultAuthUseCase {
	return &DefaultAuthUseCase{
		userRepo:  userRepo,
		publisher: publisher,
		generator: generator,
		refresher: refresher,
		revoker:   revoker,
		verifier:  verifier,
	}
}

// Login 核验凭证，开一条新轮换链并签发首对令牌
func (uc *DefaultAuthUseCase) Login(ctx context.Context, username, password string) (*entity.TokenPair, error) {
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, autherr.ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, autherr.ErrUserBlocked
	}
	if !vo.FromHash(user.PasswordHash).Matches(password) {
		zlog.C(ctx).Warn("invalid password", zap.String("username", username))
		return nil, autherr.ErrInvalidCredentials
	}

	chainID := uuid.NewString()
	pair, err := uc.generator.Execute(ctx, user.ID, user.RoleList(), chainID)
	if err != nil {
		return nil, fmt.Errorf("签发令牌失败: %w", err)
	}

	if uc.publisher != nil {
		ev := entity.NewLoginEvent(user.ID)
		if err := uc.publisher.Publish(ctx, user.ID, ev.Marshal()); err != nil {
			zlog.C(ctx).Error("publish login event failed", zap.Error(err))
		}
	}

	zlog.C(ctx).Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("chain_id", chainID))
	return pair, nil
}

func (uc *DefaultAuthUseCase) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	return uc.refresher.Execute(ctx, refreshToken)
}

func (uc *DefaultAuthUseCase) Logout(ctx context.Context, accessToken string) error {
	return uc.revoker.Execute(ctx, accessToken)
}

func (uc *DefaultAuthUseCase) Verify(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	return uc.verifier.Execute(ctx, accessToken)
}
