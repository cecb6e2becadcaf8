package out

// Connection 一条可推送的长连接，由传输层实现（WebSocket）。
// 会话注册表之外的组件不得直接关闭或遍历连接。
type Connection interface {
	// Send 非阻塞投递，缓冲满或连接已关闭时返回错误
	Send(message []byte) error
	// Close 发送关闭帧后关闭连接，幂等
	Close(reason string) error
}
