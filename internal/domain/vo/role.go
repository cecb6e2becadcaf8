package vo

type Role string

// 角色定义，与用户服务保持一致
const (
	RoleUser   Role = "USER"
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// Strings 转成字符串列表，放进令牌 claims
func Strings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
