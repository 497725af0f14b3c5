package identity

// Capability is a named permission token gating one class of operation
type Capability string

const (
	// CapabilityAll grants every capability
	CapabilityAll Capability = "all"
	// CapabilityView allows reading components and their history
	CapabilityView Capability = "view"
	// CapabilityEdit allows creating and updating component records
	CapabilityEdit Capability = "edit"
	// CapabilityInward allows applying inward stock movements
	CapabilityInward Capability = "inward"
	// CapabilityOutward allows applying outward stock movements
	CapabilityOutward Capability = "outward"
	// CapabilitySearch allows advanced inventory search
	CapabilitySearch Capability = "search"
	// CapabilityReports allows generating inventory reports and exports
	CapabilityReports Capability = "reports"
)

// String returns the string representation of Capability
func (c Capability) String() string {
	return string(c)
}

// IsValid returns true if the capability is part of the closed set
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityAll, CapabilityView, CapabilityEdit, CapabilityInward,
		CapabilityOutward, CapabilitySearch, CapabilityReports:
		return true
	}
	return false
}

// Role represents a user role
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleResearcher Role = "researcher"
	RoleEngineer   Role = "engineer"
)

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleResearcher, RoleEngineer:
		return true
	}
	return false
}

// roleCapabilities is the fixed role to capability table
var roleCapabilities = map[Role][]Capability{
	RoleAdmin:      {CapabilityAll},
	RoleUser:       {CapabilityView, CapabilityEdit, CapabilityInward, CapabilityOutward},
	RoleResearcher: {CapabilityView, CapabilitySearch},
	RoleEngineer:   {CapabilityView, CapabilityOutward, CapabilityReports},
}

// CapabilitiesForRole returns the capability set derived from a role.
// Unknown roles fall back to view-only access.
func CapabilitiesForRole(role Role) []Capability {
	caps, ok := roleCapabilities[role]
	if !ok {
		return []Capability{CapabilityView}
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Resolve returns the effective capability set for a user: an explicit
// non-empty permission list wins, otherwise the role table entry.
func Resolve(u *User) []Capability {
	if u != nil && len(u.Permissions) > 0 {
		out := make([]Capability, len(u.Permissions))
		copy(out, u.Permissions)
		return out
	}
	if u == nil {
		return []Capability{CapabilityView}
	}
	return CapabilitiesForRole(u.Role)
}

// Can reports whether the user's resolved capability set contains the given
// capability or the all token. It is pure and never fails; callers translate
// a false result into a forbidden error.
func Can(u *User, capability Capability) bool {
	for _, c := range Resolve(u) {
		if c == CapabilityAll || c == capability {
			return true
		}
	}
	return false
}

// CanAny reports whether the user holds at least one of the given capabilities
func CanAny(u *User, capabilities ...Capability) bool {
	for _, capability := range capabilities {
		if Can(u, capability) {
			return true
		}
	}
	return false
}
