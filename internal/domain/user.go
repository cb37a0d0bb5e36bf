package domain

// Role is a caller's access level, supplied by the external auth layer.
type Role string

const (
	// RoleCustomer can move money on their own account.
	RoleCustomer Role = "customer"

	// RoleManager can view global transaction feeds.
	RoleManager Role = "manager"

	// RoleAdmin can additionally freeze accounts, adjust balances and
	// promote users.
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleCustomer: true,
	RoleManager:  true,
	RoleAdmin:    true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanViewGlobal checks if the role can read ledger-wide feeds and stats.
func (r Role) CanViewGlobal() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanAdminister checks if the role can perform administrative writes.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	AccountID string
	Role      Role
}
