// Package rbac holds the static role/permission model for the dashboard.
// Role is the sole authorization axis: there are no per-user overrides, and
// the tables below never change at runtime.
package rbac

// Role is a closed enumeration; ParseRole rejects anything else.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleManager       Role = "manager"
	RoleSupervisor    Role = "supervisor"
	RoleUser          Role = "user"
)

// Section identifies a navigable area of the dashboard.
type Section string

const (
	SectionDashboard      Section = "dashboard"
	SectionEmployees      Section = "employees"
	SectionCustomers      Section = "customers"
	SectionSuppliers      Section = "suppliers"
	SectionInventory      Section = "inventory"
	SectionSales          Section = "sales"
	SectionInvoices       Section = "invoices"
	SectionSalaryPayments Section = "salary-payments"
	SectionReports        Section = "reports"
	SectionSettings       Section = "settings"
)

// Action identifies an operation a role may perform inside its sections.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

// rank orders roles for minimum-role checks. Unknown roles rank zero.
var rank = map[Role]int{
	RoleUser:          1,
	RoleSupervisor:    2,
	RoleManager:       3,
	RoleAdministrator: 4,
}

var allSections = []Section{
	SectionDashboard, SectionEmployees, SectionCustomers, SectionSuppliers,
	SectionInventory, SectionSales, SectionInvoices, SectionSalaryPayments,
	SectionReports, SectionSettings,
}

// roleSections is the canonical navigation table. salary-payments is reserved
// for administrator and manager; supervisor is a distinct tier above user.
var roleSections = map[Role][]Section{
	RoleAdministrator: allSections,
	RoleManager:       allSections,
	RoleSupervisor: {
		SectionDashboard, SectionEmployees, SectionCustomers,
		SectionInventory, SectionSales, SectionReports, SectionSettings,
	},
	RoleUser: {
		SectionDashboard, SectionSales, SectionCustomers, SectionSettings,
	},
}

var roleActions = map[Role][]Action{
	RoleAdministrator: {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport},
	RoleManager:       {ActionCreate, ActionRead, ActionUpdate, ActionExport},
	RoleSupervisor:    {ActionCreate, ActionRead, ActionUpdate},
	RoleUser:          {ActionRead, ActionCreate},
}

// Unknown roles collapse to the minimal set rather than failing open.
var (
	fallbackSections = []Section{SectionDashboard, SectionSettings}
	fallbackActions  = []Action{ActionRead}
)

// Roles enumerates the known roles from highest to lowest privilege.
func Roles() []Role {
	return []Role{RoleAdministrator, RoleManager, RoleSupervisor, RoleUser}
}

// ParseRole validates a stored role string against the closed enumeration.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := rank[r]
	return r, ok
}

// SectionsFor returns a copy of the sections role may navigate to.
func SectionsFor(role Role) []Section {
	src, ok := roleSections[role]
	if !ok {
		src = fallbackSections
	}
	out := make([]Section, len(src))
	copy(out, src)
	return out
}

// ActionsFor returns a copy of the actions role may perform.
func ActionsFor(role Role) []Action {
	src, ok := roleActions[role]
	if !ok {
		src = fallbackActions
	}
	out := make([]Action, len(src))
	copy(out, src)
	return out
}

// CanAccess reports whether role may navigate to section.
func CanAccess(role Role, section Section) bool {
	src, ok := roleSections[role]
	if !ok {
		src = fallbackSections
	}
	for _, s := range src {
		if s == section {
			return true
		}
	}
	return false
}

// Allows reports whether role may perform action.
func Allows(role Role, action Action) bool {
	src, ok := roleActions[role]
	if !ok {
		src = fallbackActions
	}
	for _, a := range src {
		if a == action {
			return true
		}
	}
	return false
}

// AtLeast reports whether role ranks at or above minimum in the fixed
// ordering administrator > manager > supervisor > user.
func AtLeast(role, minimum Role) bool {
	return rank[role] >= rank[minimum] && rank[role] > 0
}
