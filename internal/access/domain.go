package access

// Role is the closed set of account roles.
type Role string

const (
	// RoleUser is a regular account that only sees its own records.
	RoleUser Role = "user"
	// RoleManager oversees the user accounts assigned to it.
	RoleManager Role = "manager"
	// RoleAdmin has unconditional access to every account.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// readRank orders roles by read broadness: admin > manager > user.
// Unknown roles rank below user so a misconfigured account never
// gains visibility by accident.
func (r Role) readRank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// AtLeast reports whether r reads at least as broadly as other.
func (r Role) AtLeast(other Role) bool {
	return r.readRank() >= other.readRank()
}

// Actor is the authenticated principal a decision is made for.
// ManagerID is only meaningful for RoleUser accounts and names the
// manager responsible for them.
type Actor struct {
	ID        int64
	Role      Role
	IsActive  bool
	ManagerID *int64
}
