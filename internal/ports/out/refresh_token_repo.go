package out

import (
	"context"

	"github.com/EthanQC/auth-center/internal/domain/entity"
)

// RefreshTokenRepository 持久化 RefreshToken 链记录，支撑重启后的复用检测
type RefreshTokenRepository interface {
	Save(ctx context.Context, rec *entity.RefreshTokenRecord) error
	FindByJTI(ctx context.Context, jti string) (*entity.RefreshTokenRecord, error)
	// MarkRotated 把旧记录标记为已轮换
	MarkRotated(ctx context.Context, jti string) error
	// RevokeChain 把整条链的所有记录标记为已撤销，返回链上的 jti 列表
	RevokeChain(ctx context.Context, chainID string) ([]string, error)
}
