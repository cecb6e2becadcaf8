package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	httpadapter "github.com/EthanQC/auth-center/internal/adapters/in/http"
	"github.com/EthanQC/auth-center/internal/application/service"
	"github.com/EthanQC/auth-center/internal/metrics"
	"github.com/EthanQC/auth-center/internal/ports/in"
	"github.com/EthanQC/auth-center/internal/ports/out"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// Pong 等待时间
	pongWait = 60 * time.Second
	// Ping 周期（必须小于 pongWait）
	pingPeriod = 30 * time.Second
	// 最大消息大小
	maxMessageSize = 64 * 1024
	// 发送缓冲
	sendBufferSize = 256
)

// Connection 一条 WebSocket 连接，实现 out.Connection。
// 生命周期由会话注册表驱动：注册表之外不得直接关闭它。
type Connection struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	closed int32
}

var _ out.Connection = (*Connection)(nil)

func newConnection(conn *websocket.Conn) *Connection {
	return &Connection{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send 非阻塞投递，缓冲满或已关闭时返回错误
func (c *Connection) Send(message []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return fmt.Errorf("connection closed")
	}
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return fmt.Errorf("connection closed")
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Close 先发关闭帧再断开，幂等
func (c *Connection) Close(reason string) error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	close(c.done)
	return c.conn.Close()
}

// readPump 读取客户端消息；本服务只消费 ping/pong，业务消息由下游服务承载
func (c *Connection) readPump() {
	defer func() { _ = c.Close("read closed") }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				zap.L().Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump 独占写端：推送事件 + 周期心跳
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close("write closed")
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Server 认证后的 WebSocket 接入点
type Server struct {
	authUC   in.AuthUseCase
	registry *service.SessionRegistry
	upgrader websocket.Upgrader
}

func NewServer(authUC in.AuthUseCase, registry *service.SessionRegistry) *Server {
	return &Server{
		authUC:   authUC,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // 生产环境应该验证 Origin
			},
		},
	}
}

// tokenFromRequest 依次尝试 query、Authorization 头和子协议。
// 浏览器的 WebSocket API 不能自定义请求头，只能借 Sec-WebSocket-Protocol 传令牌，
// 约定格式为 "bearer, <token>"。
func tokenFromRequest(c *gin.Context) (token string, viaProtocol bool) {
	if t := c.Query("token"); t != "" {
		return t, false
	}
	if t := httpadapter.ExtractBearer(c.Request); t != "" {
		return t, false
	}
	proto := c.GetHeader("Sec-WebSocket-Protocol")
	if parts := strings.SplitN(proto, ",", 2); len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return strings.TrimSpace(parts[1]), true
	}
	return "", false
}

// Handle 升级握手：先认证，后升级，再注册会话；断开时注销
func (s *Server) Handle(c *gin.Context) {
	token, viaProtocol := tokenFromRequest(c)
	claims, err := s.authUC.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	// 走子协议传令牌时必须回选一个子协议，否则浏览器会判握手失败
	var respHeader http.Header
	if viaProtocol {
		respHeader = http.Header{"Sec-WebSocket-Protocol": []string{"bearer"}}
	}

	raw, err := s.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newConnection(raw)
	sess := s.registry.Register(c.Request.Context(), claims.Subject, conn)
	metrics.ActiveSessions.Inc()
	zap.L().Info("websocket connected",
		zap.String("user_id", claims.Subject),
		zap.String("session_id", sess.ID))

	go conn.writePump()
	conn.readPump()

	// 此处 ctx 可能已随请求结束，注销用独立 ctx
	s.registry.Unregister(context.Background(), sess.ID)
	metrics.ActiveSessions.Dec()
	zap.L().Info("websocket disconnected",
		zap.String("user_id", claims.Subject),
		zap.String("session_id", sess.ID))
}
