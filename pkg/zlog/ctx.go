package zlog

import (
	"context"

	"go.uber.org/zap"
)

// loggerKey ctx 中存放请求级 logger 的键
type loggerKey struct{}

// WithContext 把带请求字段的 logger 挂到 ctx 上，后续 C(ctx) 取回
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext 取 ctx 上的 logger，没有则退回全局实例
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}

// C 业务层简写
func C(ctx context.Context) *zap.Logger { return FromContext(ctx) }
