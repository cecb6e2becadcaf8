package entity

import (
	"testing"
	"time"
)

func TestRefreshTokenRecordUsable(t *testing.T) {
	base := RefreshTokenRecord{
		JTI:       "j1",
		ChainID:   "c1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if !base.Usable() {
		t.Error("新记录应可用")
	}

	rotated := base
	rotated.Rotated = true
	if rotated.Usable() {
		t.Error("已轮换的记录不可用")
	}

	revoked := base
	revoked.Revoked = true
	if revoked.Usable() {
		t.Error("已撤销的记录不可用")
	}

	expired := base
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if !expired.IsExpired() || expired.Usable() {
		t.Error("过期记录不可用")
	}
}

func TestUserRoleList(t *testing.T) {
	cases := []struct {
		roles string
		want  []string
	}{
		{"", nil},
		{"USER", []string{"USER"}},
		{"USER,ADMIN", []string{"USER", "ADMIN"}},
		{"USER,,ADMIN,", []string{"USER", "ADMIN"}},
	}
	for _, tc := range cases {
		u := &User{Roles: tc.roles}
		got := u.RoleList()
		if len(got) != len(tc.want) {
			t.Errorf("RoleList(%q) = %v, want %v", tc.roles, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("RoleList(%q)[%d] = %q, want %q", tc.roles, i, got[i], tc.want[i])
			}
		}
	}
}
