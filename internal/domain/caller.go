package domain

// AdminRole is the role that may run admin actions.
const AdminRole = "FACTAdmin"

// Caller identifies who is invoking an operation. It is always passed explicitly.
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == AdminRole
}

// SystemCaller is used by operator tooling (factctl) that runs outside a request.
func SystemCaller() Caller {
	return Caller{UserID: "system", Role: AdminRole}
}
