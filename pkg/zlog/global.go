package zlog

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// MustInitGlobal 初始化并替换 zap 的全局 logger，配置非法直接 panic。
// 之后进程收到 SIGHUP 会在 info/debug 之间来回切换级别，方便线上临时排查
func MustInitGlobal(cfg Config) {
	l, err := New(cfg, zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	go watchSIGHUP()
}

func watchSIGHUP() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	for range ch {
		next := "debug"
		if GetLevel() == "debug" {
			next = "info"
		}
		SetLevel(next)
		zap.L().Info("log level toggled", zap.String("now", next))
	}
}
