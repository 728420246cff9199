package rbac

import (
	"context"
	"testing"
)

func TestCheckerWildcard(t *testing.T) {
	c := NewChecker(nil)
	for _, perm := range []string{"course:manage", "finance:manage", "metrics:view-finance"} {
		if !c.Has(RoleSuperAdmin, perm) {
			t.Fatalf("super_admin should hold %q", perm)
		}
	}
}

func TestCheckerRoleTiers(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleStudent, "progress:mark", true},
		{RoleStudent, "question:manage", false},
		{RoleStudent, "metrics:view-basic", false},
		{RoleInstructor, "metrics:view-basic", true},
		{RoleInstructor, "metrics:view-performance", false},
		{RoleInstructor, "course:manage", false},
		{RoleCoordinator, "metrics:view-performance", true},
		{RoleCoordinator, "metrics:view-finance", false},
		{RoleCoordinator, "course:manage", true},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerUnknownRole(t *testing.T) {
	c := NewChecker(nil)
	if c.Has("visitante", "course:view") {
		t.Fatalf("unknown role should hold nothing")
	}
}

func TestCheckerPrefixPattern(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"metrics:*"}})
	if !c.Has("auditor", "metrics:view-finance") {
		t.Fatalf("prefix pattern should match")
	}
	if c.Has("auditor", "course:view") {
		t.Fatalf("prefix pattern must not leak across prefixes")
	}
}

func TestRoleContextRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), RoleCoordinator)
	if got := RoleFromContext(ctx); got != RoleCoordinator {
		t.Fatalf("got %q", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Fatalf("empty context should yield empty role, got %q", got)
	}
}
