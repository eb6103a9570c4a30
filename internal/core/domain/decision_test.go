package domain

import "testing"

func TestDecideAuthenticated(t *testing.T) {
	if got := DecideAuthenticated(nil); got != Unauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got)
	}
	if got := DecideAuthenticated(&Identity{UserID: "u1", Role: RoleUser}); got != Allow {
		t.Fatalf("expected allow, got %s", got)
	}
}

func TestDecideRole(t *testing.T) {
	cases := []struct {
		name     string
		id       *Identity
		required Role
		want     Decision
	}{
		{"anonymous", nil, RoleAdmin, Unauthenticated},
		{"user on admin route", &Identity{UserID: "u1", Role: RoleUser}, RoleAdmin, Forbidden},
		{"admin on admin route", &Identity{UserID: "a1", Role: RoleAdmin}, RoleAdmin, Allow},
		{"user on user route", &Identity{UserID: "u1", Role: RoleUser}, RoleUser, Allow},
		{"admin on user route", &Identity{UserID: "a1", Role: RoleAdmin}, RoleUser, Forbidden},
		{"unknown required role", &Identity{UserID: "a1", Role: RoleAdmin}, Role("root"), Forbidden},
		{"unknown session role", &Identity{UserID: "x", Role: Role("Admin")}, RoleAdmin, Forbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecideRole(tc.id, tc.required); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDecisionsAreDistinct(t *testing.T) {
	if Unauthenticated == Forbidden || Unauthenticated.String() == Forbidden.String() {
		t.Fatalf("unauthenticated and forbidden must differ")
	}
}
