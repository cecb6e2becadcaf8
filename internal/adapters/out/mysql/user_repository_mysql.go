package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/EthanQC/auth-center/internal/domain/entity"
	"github.com/EthanQC/auth-center/internal/ports/out"
)

// UserRepositoryMySQL 用户凭证查询，只读；用户档案的写入归用户服务
type UserRepositoryMySQL struct {
	db *gorm.DB
}

var _ out.UserRepository = (*UserRepositoryMySQL)(nil)

func NewUserRepositoryMySQL(db *gorm.DB) *UserRepositoryMySQL {
	return &UserRepositoryMySQL{db: db}
}

func (r *UserRepositoryMySQL) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
