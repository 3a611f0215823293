package auth

import (
	"errors"
	"testing"

	"clierp.org/internal/erperr"
)

func TestRoleOrdering(t *testing.T) {
	all := Roles()
	for i, actual := range all {
		for j, required := range all {
			got := actual.Meets(required)
			want := i >= j
			if got != want {
				t.Fatalf("Meets(%s, %s)=%v, want %v", actual, required, got, want)
			}
		}
	}
}

func TestAdminMeetsEverything(t *testing.T) {
	for _, r := range Roles() {
		if !RoleAdmin.Meets(r) {
			t.Fatalf("admin should meet %s", r)
		}
	}
}

func TestAuditorMeetsOnlyItself(t *testing.T) {
	for _, r := range Roles() {
		got := RoleAuditor.Meets(r)
		if r == RoleAuditor && !got {
			t.Fatal("auditor should meet itself")
		}
		if r != RoleAuditor && got {
			t.Fatalf("auditor should not meet %s", r)
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("  Manager ")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if r != RoleManager {
		t.Fatalf("unexpected role: %s", r)
	}
	if _, err := ParseRole("root"); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnknownRoleRanksBelowAll(t *testing.T) {
	if Role("root").Meets(RoleAuditor) {
		t.Fatal("unknown role should not meet any valid role")
	}
}
