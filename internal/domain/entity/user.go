package entity

import (
	"time"
)

// User 只承载认证所需的最小字段，完整的用户档案归用户服务管
type User struct {
	ID           string    `gorm:"column:id;size:64;primaryKey"`
	Username     string    `gorm:"column:username;size:64;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:128"`
	Roles        string    `gorm:"column:roles;size:255"` // 逗号分隔
	Blocked      bool      `gorm:"column:blocked"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

// RoleList 拆出角色列表
func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	out := make([]string, 0, 4)
	start := 0
	for i := 0; i <= len(u.Roles); i++ {
		if i == len(u.Roles) || u.Roles[i] == ',' {
			if i > start {
				out = append(out, u.Roles[start:i])
			}
			start = i + 1
		}
	}
	return out
}
