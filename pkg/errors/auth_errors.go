package errors

import "errors"

var (
	// 令牌结构与签名相关
	ErrMalformedToken   = errors.New("令牌格式错误")
	ErrSignatureInvalid = errors.New("令牌签名无效")
	ErrTokenExpired     = errors.New("令牌已过期")
	ErrWrongTokenKind   = errors.New("令牌类型不匹配")

	// 撤销与复用相关
	ErrTokenRevoked = errors.New("令牌已被撤销")
	ErrTokenReuse   = errors.New("检测到刷新令牌复用")
	ErrChainRevoked = errors.New("令牌链已被整体撤销")

	// 凭证相关
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserBlocked        = errors.New("用户已被封禁")

	// 基础设施相关
	ErrStoreUnavailable = errors.New("撤销存储不可用")

	// 中间件统一对外错误
	ErrUnauthorized = errors.New("认证失败")
)
