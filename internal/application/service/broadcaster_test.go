package service

import (
	"bytes"
	"context"
	"testing"
)

func TestPublishDeliversToAllSessions(t *testing.T) {
	r := NewSessionRegistry(0, nil, 0)
	b := NewBroadcaster(r)
	ctx := context.Background()

	c1, c2 := &stubConn{}, &stubConn{}
	r.Register(ctx, "u1", c1)
	r.Register(ctx, "u1", c2)
	r.Register(ctx, "u2", &stubConn{})

	payload := []byte(`{"event":"ping"}`)
	if n := b.Publish(ctx, "u1", payload); n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}
	for i, c := range []*stubConn{c1, c2} {
		c.mu.Lock()
		ok := len(c.sent) == 1 && bytes.Equal(c.sent[0], payload)
		c.mu.Unlock()
		if !ok {
			t.Errorf("连接 %d 未收到载荷", i)
		}
	}
}

func TestPublishNoSessions(t *testing.T) {
	b := NewBroadcaster(NewSessionRegistry(0, nil, 0))
	if n := b.Publish(context.Background(), "nobody", []byte("x")); n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
}

// 单条连接发送失败视为隐式断开：注销它，其余照常投递
func TestPublishDropsFailedSession(t *testing.T) {
	r := NewSessionRegistry(0, nil, 0)
	b := NewBroadcaster(r)
	ctx := context.Background()

	dead := &stubConn{broken: true}
	live := &stubConn{}
	r.Register(ctx, "u1", dead)
	r.Register(ctx, "u1", live)

	if n := b.Publish(ctx, "u1", []byte("hello")); n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if !dead.isClosed() {
		t.Error("失败的连接应被关闭")
	}
	if n := r.Count("u1"); n != 1 {
		t.Errorf("注销失败连接后 Count = %d, want 1", n)
	}
	if live.isClosed() {
		t.Error("正常连接不应被关闭")
	}
}
