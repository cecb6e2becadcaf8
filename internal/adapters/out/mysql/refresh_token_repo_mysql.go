package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/ports/out"
)

// RefreshTokenRepoMysql RefreshToken 链记录的持久化实现
type RefreshTokenRepoMysql struct {
	db *gorm.DB
}

var _ out.RefreshTokenRepository = (*RefreshTokenRepoMysql)(nil)

func NewRefreshTokenRepoMysql(db *gorm.DB) *RefreshTokenRepoMysql {
	return &RefreshTokenRepoMysql{db: db}
}

func (r *RefreshTokenRepoMysql) Save(ctx context.Context, rec *entity.RefreshTokenRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *RefreshTokenRepoMysql) FindByJTI(ctx context.Context, jti string) (*entity.RefreshTokenRecord, error) {
	var rec entity.RefreshTokenRecord
	err := r.db.WithContext(ctx).Where("jti = ?", jti).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RefreshTokenRepoMysql) MarkRotated(ctx context.Context, jti string) error {
	return r.db.WithContext(ctx).
		Model(&entity.RefreshTokenRecord{}).
		Where("jti = ?", jti).
		Update("rotated", true).Error
}

// RevokeChain 标记整条链为已撤销并返回链上全部 jti，调用方据此在黑名单中逐个登记
func (r *RefreshTokenRepoMysql) RevokeChain(ctx context.Context, chainID string) ([]string, error) {
	var jtis []string
	err := r.db.WithContext(ctx).
		Model(&entity.RefreshTokenRecord{}).
		Where("chain_id = ?", chainID).
		Pluck("jti", &jtis).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&entity.RefreshTokenRecord{}).
		Where("chain_id = ?", chainID).
		Update("revoked", true).Error
	if err != nil {
		return nil, err
	}
	return jtis, nil
}
