package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	autherr "github.com/EthanQC/auth-center/pkg/errors"
)

// 令牌类型
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims 固定的令牌载荷结构，不使用开放 map，保证校验可预期
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	Cid   string   `json:"cid"`  // 轮换链 ID，一次登录一条链
	Kind  string   `json:"kind"` // access / refresh
	jwtv5.RegisteredClaims
}

// Manager 负责 JWT 的签发与解析
type Manager interface {
	Issue(userID string, roles []string, chainID, kind string) (string, *Claims, error)
	Parse(tokenStr string) (*Claims, error)
}

type manager struct {
	// keys[0] 用于签发，其余为仍然可验签的旧 key，支持密钥轮换
	keys       [][]byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager 用有序 key 列表构造 Manager，列表第一个 key 负责签发
func NewManager(keys []string, accessTTL, refreshTTL time.Duration) (Manager, error) {
	if len(keys) == 0 || keys[0] == "" {
		return nil, fmt.Errorf("jwt: 至少需要一个签发 key")
	}
	bs := make([][]byte, 0, len(keys))
	for _, k := range keys {
		bs = append(bs, []byte(k))
	}
	return &manager{keys: bs, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// Issue 生成一个带 jti、链 ID 和类型的 JWT
func (m *manager) Issue(userID string, roles []string, chainID, kind string) (string, *Claims, error) {
	ttl := m.accessTTL
	if kind == KindRefresh {
		ttl = m.refreshTTL
	}
	now := time.Now()
	claims := &Claims{
		Roles: roles,
		Cid:   chainID,
		Kind:  kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.keys[0])
	if err != nil {
		return "", nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, claims, nil
}

// Parse 验签并解析 JWT，依次尝试 key 列表，只做密码学校验，不查撤销状态
func (m *manager) Parse(tokenStr string) (*Claims, error) {
	var lastErr error
	for _, key := range m.keys {
		claims := &Claims{}
		tok, err := jwtv5.ParseWithClaims(tokenStr, claims, func(t *jwtv5.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
			}
			return key, nil
		})
		if err == nil && tok.Valid {
			return claims, nil
		}
		lastErr = err
		// 签名不匹配时继续尝试下一个 key，其余错误直接归类返回
		if !errors.Is(err, jwtv5.ErrSignatureInvalid) {
			break
		}
	}
	return nil, mapParseError(lastErr)
}

// mapParseError 将 jwt/v5 的错误归类为本服务的错误口径
func mapParseError(err error) error {
	switch {
	case err == nil:
		return autherr.ErrMalformedToken
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return autherr.ErrTokenExpired
	case errors.Is(err, jwtv5.ErrSignatureInvalid):
		return autherr.ErrSignatureInvalid
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return autherr.ErrMalformedToken
	default:
		return fmt.Errorf("%w: %v", autherr.ErrMalformedToken, err)
	}
}
