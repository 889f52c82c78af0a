package permissions

// Role is the closed set of actor roles the depot core authorizes against.
// The auth layer maps its own principals onto these before calling in.
type Role string

const (
	RoleCustomerAdmin Role = "CustomerAdmin"
	RoleCustomerUser  Role = "CustomerUser"
	RoleSaleAdmin     Role = "SaleAdmin"
	RoleSystemAdmin   Role = "SystemAdmin"
	RoleAccountant    Role = "Accountant"
	RoleGateStaff     Role = "GateStaff"
)

var allRoles = map[Role]struct{}{
	RoleCustomerAdmin: {},
	RoleCustomerUser:  {},
	RoleSaleAdmin:     {},
	RoleSystemAdmin:   {},
	RoleAccountant:    {},
	RoleGateStaff:     {},
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

func (r Role) IsCustomer() bool {
	return r == RoleCustomerAdmin || r == RoleCustomerUser
}

func (r Role) IsDepot() bool {
	return r == RoleSaleAdmin || r == RoleSystemAdmin || r == RoleAccountant
}

func (r Role) IsGate() bool {
	return r == RoleGateStaff
}

// CustomerRoles and DepotRoles double as the actor sets of the two
// soft-delete scopes.
var (
	CustomerRoles = []Role{RoleCustomerAdmin, RoleCustomerUser}
	DepotRoles    = []Role{RoleSaleAdmin, RoleSystemAdmin, RoleAccountant}
	GateRoles     = []Role{RoleGateStaff}

	AllRoles = []Role{
		RoleCustomerAdmin,
		RoleCustomerUser,
		RoleSaleAdmin,
		RoleSystemAdmin,
		RoleAccountant,
		RoleGateStaff,
	}
)
