package kafka

import (
	"strings"
	"testing"
)

// 每个进程必须拿到独占的消费组，否则下线事件在节点间只会被消费一次
func TestInstanceGroupIDIsUniquePerCall(t *testing.T) {
	a := instanceGroupID("auth-center")
	b := instanceGroupID("auth-center")

	if !strings.HasPrefix(a, "auth-center-") {
		t.Errorf("缺少前缀: %q", a)
	}
	if a == b {
		t.Errorf("两次生成的消费组相同: %q", a)
	}
}
