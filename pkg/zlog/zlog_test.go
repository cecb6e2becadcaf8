package zlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	good := Config{Service: "svc", Level: "info", Encoding: "json", Stdout: true}
	if err := good.Validate(); err != nil {
		t.Errorf("合法配置报错: %v", err)
	}

	bad := []Config{
		{Level: "info", Stdout: true},                                // 缺 service
		{Service: "svc", Level: "verbose", Stdout: true},             // 非法级别
		{Service: "svc", Encoding: "xml", Stdout: true},              // 非法编码
		{Service: "svc", Level: "info", Stdout: false},               // 无任何输出
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("用例 %d 应报错", i)
		}
	}
}

func TestLevelHandler(t *testing.T) {
	initLevel("info")
	h := LevelHTTPHandler()

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPut, "/log/level?v=debug", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("PUT code = %d", w.Code)
	}
	if GetLevel() != "debug" {
		t.Errorf("级别 = %q, want debug", GetLevel())
	}

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/log/level", nil))
	if got := w.Body.String(); got != "debug" {
		t.Errorf("GET 返回 %q", got)
	}

	SetLevel("info")
}

func TestContextLogger(t *testing.T) {
	base := zap.NewNop()
	ctx := WithContext(context.Background(), base)
	if C(ctx) != base {
		t.Error("应取回 ctx 上挂的 logger")
	}

	// 没挂过 logger 时退回全局
	if C(context.Background()) != zap.L() {
		t.Error("无 logger 的 ctx 应退回全局实例")
	}

	// 挂 nil 不生效
	if C(WithContext(context.Background(), nil)) != zap.L() {
		t.Error("nil logger 不应覆盖全局实例")
	}
}

func TestNewWritesStructuredLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{
		Service:  "auth-center-test",
		Level:    "info",
		Encoding: "json",
		File:     FileConfig{Path: path, MaxSizeMB: 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读日志文件失败: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"service":"auth-center-test"`) {
		t.Errorf("日志缺少 service 字段: %s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("日志缺少消息体: %s", out)
	}
}
