package identity

// Role is the closed set of staff roles. Authorization is driven by the
// capability table below, never by comparing role strings at call sites.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePharmacist:
		return true
	}
	return false
}

// AllRoles returns every valid role
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleDoctor, RolePharmacist}
}

// Capability names a guarded operation on the API surface
type Capability string

const (
	CapMedicineRead   Capability = "medicine:read"
	CapMedicineWrite  Capability = "medicine:write"
	CapMedicineDelete Capability = "medicine:delete"
	CapInventoryRead  Capability = "inventory:read"
	CapInventoryWrite Capability = "inventory:write"
	CapLedgerRead     Capability = "ledger:read"
	CapUserManage     Capability = "user:manage"
)

// roleCapabilities is the single source of truth for what each role may do
var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapMedicineRead:   true,
		CapMedicineWrite:  true,
		CapMedicineDelete: true,
		CapInventoryRead:  true,
		CapInventoryWrite: true,
		CapLedgerRead:     true,
		CapUserManage:     true,
	},
	RolePharmacist: {
		CapMedicineRead:   true,
		CapMedicineWrite:  true,
		CapInventoryRead:  true,
		CapInventoryWrite: true,
		CapLedgerRead:     true,
	},
	RoleDoctor: {
		CapMedicineRead: true,
	},
}

// Can reports whether the role holds the given capability
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	return caps[c]
}

// Capabilities returns the capabilities held by the role
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	result := make([]Capability, 0, len(caps))
	for c, held := range caps {
		if held {
			result = append(result, c)
		}
	}
	return result
}
