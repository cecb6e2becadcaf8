package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EthanQC/auth-center/internal/ports/out"
)

// Session 一条活跃的 WebSocket 连接，归属于一个已认证身份
type Session struct {
	ID          string
	UserID      string
	Conn        out.Connection
	ConnectedAt time.Time
}

// userSessions 单个身份的会话集合，自带锁：
// 同一身份的操作串行，不同身份互不阻塞
type userSessions struct {
	mu   sync.Mutex
	list []*Session // 按注册顺序排列，最旧的在前
}

// SessionRegistry 管理所有活跃会话，是连接句柄生命周期的唯一所有者。
// 外层 map 只在增删身份条目时短暂加写锁，真正的会话操作走条目自己的锁。
type SessionRegistry struct {
	mu         sync.RWMutex
	users      map[string]*userSessions
	sidToUID   sync.Map // sessionID -> userID，给 Unregister 反查用
	maxPerUser int
	index      out.SessionIndex // 共享索引，可为 nil（单节点部署）
	indexTTL   time.Duration
}

// NewSessionRegistry maxPerUser <= 0 表示不限制
func NewSessionRegistry(maxPerUser int, index out.SessionIndex, indexTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		users:      make(map[string]*userSessions),
		maxPerUser: maxPerUser,
		index:      index,
		indexTTL:   indexTTL,
	}
}

func (r *SessionRegistry) entry(userID string) *userSessions {
	r.mu.RLock()
	us, ok := r.users[userID]
	r.mu.RUnlock()
	if ok {
		return us
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if us, ok = r.users[userID]; ok {
		return us
	}
	us = &userSessions{}
	r.users[userID] = us
	return us
}

// Register 注册一条新会话；超出单身份上限时踢掉最旧的一条（先发关闭帧）
func (r *SessionRegistry) Register(ctx context.Context, userID string, conn out.Connection) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}

	us := r.entry(userID)
	var evicted []*Session

	us.mu.Lock()
	us.list = append(us.list, s)
	if r.maxPerUser > 0 {
		for len(us.list) > r.maxPerUser {
			old := us.list[0]
			us.list = us.list[1:]
			_ = old.Conn.Close("session limit exceeded")
			evicted = append(evicted, old)
		}
	}
	us.mu.Unlock()

	r.sidToUID.Store(s.ID, userID)
	for _, old := range evicted {
		r.sidToUID.Delete(old.ID)
	}

	if r.index != nil {
		if err := r.index.Add(ctx, userID, s.ID, r.indexTTL); err != nil {
			zap.L().Warn("session index add failed", zap.String("user_id", userID), zap.Error(err))
		}
		for _, old := range evicted {
			if err := r.index.Remove(ctx, userID, old.ID); err != nil {
				zap.L().Warn("session index remove failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
	return s
}

// Unregister 连接自然关闭时调用，幂等
func (r *SessionRegistry) Unregister(ctx context.Context, sessionID string) {
	v, ok := r.sidToUID.LoadAndDelete(sessionID)
	if !ok {
		return
	}
	userID := v.(string)

	us := r.entry(userID)
	us.mu.Lock()
	for i, s := range us.list {
		if s.ID == sessionID {
			us.list = append(us.list[:i], us.list[i+1:]...)
			break
		}
	}
	us.mu.Unlock()

	if r.index != nil {
		if err := r.index.Remove(ctx, userID, sessionID); err != nil {
			zap.L().Warn("session index remove failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// EvictAll 强制关闭并移除某身份的全部会话；关闭帧和移除在条目锁内完成，
// 并发的 ListSessions 不会看到"已关闭但仍在列表里"的会话
func (r *SessionRegistry) EvictAll(ctx context.Context, userID string) int {
	r.mu.RLock()
	us, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	us.mu.Lock()
	closed := us.list
	us.list = nil
	for _, s := range closed {
		_ = s.Conn.Close("session evicted")
	}
	us.mu.Unlock()

	for _, s := range closed {
		r.sidToUID.Delete(s.ID)
	}

	if r.index != nil {
		if err := r.index.RemoveAll(ctx, userID); err != nil {
			zap.L().Warn("session index clear failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if len(closed) > 0 {
		zap.L().Info("sessions evicted",
			zap.String("user_id", userID),
			zap.Int("count", len(closed)))
	}
	return len(closed)
}

// ListSessions 返回某身份当前全部会话的快照
func (r *SessionRegistry) ListSessions(userID string) []*Session {
	r.mu.RLock()
	us, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	us.mu.Lock()
	defer us.mu.Unlock()
	out := make([]*Session, len(us.list))
	copy(out, us.list)
	return out
}

// Count 某身份当前会话数
func (r *SessionRegistry) Count(userID string) int {
	r.mu.RLock()
	us, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	us.mu.Lock()
	defer us.mu.Unlock()
	return len(us.list)
}
