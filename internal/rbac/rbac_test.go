package rbac

import "testing"

func TestEveryRoleReachesDashboard(t *testing.T) {
	for _, role := range Roles() {
		sections := SectionsFor(role)
		if len(sections) == 0 {
			t.Errorf("SectionsFor(%s) is empty", role)
		}
		if !CanAccess(role, SectionDashboard) {
			t.Errorf("CanAccess(%s, dashboard) = false", role)
		}
	}
}

func TestUnknownRoleFallsBackToMinimalSet(t *testing.T) {
	sections := SectionsFor(Role("intern"))
	if len(sections) != 2 {
		t.Fatalf("SectionsFor(intern) = %v, want the two-section fallback", sections)
	}
	if !CanAccess(Role("intern"), SectionDashboard) || !CanAccess(Role("intern"), SectionSettings) {
		t.Error("fallback set must cover dashboard and settings")
	}
	if CanAccess(Role("intern"), SectionSalaryPayments) {
		t.Error("unknown role must not reach salary-payments")
	}
	if Allows(Role("intern"), ActionDelete) {
		t.Error("unknown role must be read-only")
	}
	if !Allows(Role("intern"), ActionRead) {
		t.Error("fallback must still allow read")
	}
}

func TestSalaryPaymentsGating(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdministrator, true},
		{RoleManager, true},
		{RoleSupervisor, false},
		{RoleUser, false},
	}
	for _, tt := range tests {
		if got := CanAccess(tt.role, SectionSalaryPayments); got != tt.want {
			t.Errorf("CanAccess(%s, salary-payments) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestActionTableTiers(t *testing.T) {
	if !Allows(RoleAdministrator, ActionDelete) {
		t.Error("administrator must be allowed delete")
	}
	if Allows(RoleManager, ActionDelete) {
		t.Error("manager must not delete")
	}
	if !Allows(RoleManager, ActionExport) {
		t.Error("manager must export")
	}
	if Allows(RoleSupervisor, ActionExport) {
		t.Error("supervisor must not export")
	}
	if Allows(RoleUser, ActionUpdate) {
		t.Error("user must not update")
	}
	if !Allows(RoleUser, ActionCreate) {
		t.Error("user must create")
	}
}

func TestAtLeastOrdering(t *testing.T) {
	tests := []struct {
		role, minimum Role
		want          bool
	}{
		{RoleAdministrator, RoleUser, true},
		{RoleAdministrator, RoleAdministrator, true},
		{RoleManager, RoleAdministrator, false},
		{RoleSupervisor, RoleUser, true},
		{RoleSupervisor, RoleManager, false},
		{RoleUser, RoleUser, true},
		{Role("intern"), RoleUser, false},
		{Role("intern"), Role("intern"), false},
	}
	for _, tt := range tests {
		if got := AtLeast(tt.role, tt.minimum); got != tt.want {
			t.Errorf("AtLeast(%s, %s) = %v, want %v", tt.role, tt.minimum, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("administrator"); !ok {
		t.Error("ParseRole(administrator) rejected")
	}
	if _, ok := ParseRole("root"); ok {
		t.Error("ParseRole(root) accepted")
	}
}
