package jwt

import (
	"errors"
	"testing"
	"time"

	autherr "github.com/EthanQC/auth-center/pkg/errors"
)

func newTestManager(t *testing.T, keys ...string) Manager {
	t.Helper()
	m, err := NewManager(keys, 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t, "key-a")

	token, issued, err := m.Issue("u1", []string{"USER", "ADMIN"}, "chain-1", KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.ID == "" {
		t.Fatal("签发的令牌应带 jti")
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", claims.Subject)
	}
	if claims.Cid != "chain-1" {
		t.Errorf("Cid = %q, want chain-1", claims.Cid)
	}
	if claims.Kind != KindAccess {
		t.Errorf("Kind = %q, want %q", claims.Kind, KindAccess)
	}
	if claims.ID != issued.ID {
		t.Errorf("ID = %q, want %q", claims.ID, issued.ID)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "USER" {
		t.Errorf("Roles = %v", claims.Roles)
	}
}

func TestParseExpired(t *testing.T) {
	m, err := NewManager([]string{"key-a"}, -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	token, _, err := m.Issue("u1", nil, "c", KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, autherr.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseWrongKey(t *testing.T) {
	signer := newTestManager(t, "key-a")
	verifier := newTestManager(t, "key-b")

	token, _, err := signer.Issue("u1", nil, "c", KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, autherr.ErrSignatureInvalid) {
		t.Errorf("err = %v, want ErrSignatureInvalid", err)
	}
}

// 密钥轮换：新 key 签发，旧 key 仍然可验签
func TestParseWithRotatedKeys(t *testing.T) {
	old := newTestManager(t, "key-old")
	token, _, err := old.Issue("u1", nil, "c", KindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rotated := newTestManager(t, "key-new", "key-old")
	claims, err := rotated.Parse(token)
	if err != nil {
		t.Fatalf("Parse with rotated keys: %v", err)
	}
	if claims.Kind != KindRefresh {
		t.Errorf("Kind = %q, want %q", claims.Kind, KindRefresh)
	}
}

func TestParseGarbage(t *testing.T) {
	m := newTestManager(t, "key-a")
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Parse(tok); !errors.Is(err, autherr.ErrMalformedToken) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformedToken", tok, err)
		}
	}
}

func TestNewManagerRequiresKey(t *testing.T) {
	if _, err := NewManager(nil, time.Minute, time.Hour); err == nil {
		t.Error("空 key 列表应报错")
	}
	if _, err := NewManager([]string{""}, time.Minute, time.Hour); err == nil {
		t.Error("空字符串 key 应报错")
	}
}
