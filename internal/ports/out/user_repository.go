package out

import (
	"context"

	"github.com/EthanQC/auth-center/internal/domain/entity"
)

// UserRepository 外部用户体系的最小边界，只做凭证核验所需的查询
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
