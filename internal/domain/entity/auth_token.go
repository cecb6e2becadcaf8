package entity

import (
	"time"
)

// TokenPair 一次签发的令牌对，返回给客户端
type TokenPair struct {
	UserID           string `json:"user_id"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`         // AccessToken 剩余秒数
	RefreshExpiresIn int64  `json:"refresh_expires_in"` // RefreshToken 剩余秒数，cookie 有效期用它
}

// 轮换链状态：一次登录产生一条链，链上任意时刻只有一个有效的 RefreshToken
const (
	ChainActive  = "active"  // 当前 RefreshToken 可用
	ChainRotated = "rotated" // 已被新 token 取代，旧 token 不可再用
	ChainRevoked = "revoked" // 终态，整条链全部失效
)

// RefreshTokenRecord 持久化的 RefreshToken 记录，支撑重启后的复用检测
type RefreshTokenRecord struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex"`
	ChainID   string    `gorm:"column:chain_id;size:64;index"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	IssuedAt  time.Time `gorm:"column:issued_at"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	Rotated   bool      `gorm:"column:rotated"` // 已被后继 token 取代
	Revoked   bool      `gorm:"column:revoked"` // 链撤销或显式登出
}

func (RefreshTokenRecord) TableName() string {
	return "refresh_tokens"
}

// IsExpired 是否已过自然过期时间
func (r *RefreshTokenRecord) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Usable 只有未轮换、未撤销、未过期的记录才能换新令牌
func (r *RefreshTokenRecord) Usable() bool {
	return !r.Rotated && !r.Revoked && !r.IsExpired()
}
