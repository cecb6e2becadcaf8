package entity

import (
	"encoding/json"
	"time"
)

// 认证域事件类型
const (
	EventLogin        = "auth.login"
	EventSessionEvict = "auth.session.evict"
)

// 强制下线原因
const (
	EvictReasonLogout = "logout"
	EvictReasonReuse  = "refresh token reuse"
)

// AuthEvent 发往消息总线的认证域事件；其它节点据此踢掉本地会话
type AuthEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

func NewEvictEvent(userID, reason string) *AuthEvent {
	return &AuthEvent{
		Type:   EventSessionEvict,
		UserID: userID,
		Reason: reason,
		At:     time.Now(),
	}
}

func NewLoginEvent(userID string) *AuthEvent {
	return &AuthEvent{Type: EventLogin, UserID: userID, At: time.Now()}
}

func (e *AuthEvent) Marshal() []byte {
	b, _ := json.Marshal(e)
	return b
}
