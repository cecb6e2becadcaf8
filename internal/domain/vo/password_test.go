package vo

import "testing"

func TestPasswordHashAndMatch(t *testing.T) {
	pw, err := NewPassword("abc123")
	if err != nil {
		t.Fatalf("NewPassword: %v", err)
	}
	if pw.HashedValue == "abc123" {
		t.Fatal("密码不得以明文存储")
	}
	if !FromHash(pw.HashedValue).Matches("abc123") {
		t.Error("正确密码应匹配")
	}
	if FromHash(pw.HashedValue).Matches("abc124") {
		t.Error("错误密码不应匹配")
	}
}

func TestPasswordRules(t *testing.T) {
	bad := []string{
		"",
		"a1",                     // 太短
		"abcdef",                 // 缺数字
		"123456",                 // 缺字母
		"a1234567890123456789x0", // 太长
	}
	for _, p := range bad {
		if _, err := NewPassword(p); err == nil {
			t.Errorf("NewPassword(%q) 应报错", p)
		}
	}
	if _, err := NewPassword("passw0rd"); err != nil {
		t.Errorf("合法密码报错: %v", err)
	}
}
