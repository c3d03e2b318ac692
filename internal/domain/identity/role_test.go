package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.IsValid(), r.String())
	}
	assert.False(t, Role("nurse").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_Capabilities(t *testing.T) {
	// Admin holds everything
	for _, c := range []Capability{CapMedicineRead, CapMedicineWrite, CapMedicineDelete, CapInventoryRead, CapInventoryWrite, CapLedgerRead, CapUserManage} {
		assert.True(t, RoleAdmin.Can(c), string(c))
	}

	// Pharmacist dispenses and receives but cannot delete medicines or manage users
	assert.True(t, RolePharmacist.Can(CapInventoryWrite))
	assert.True(t, RolePharmacist.Can(CapLedgerRead))
	assert.False(t, RolePharmacist.Can(CapMedicineDelete))
	assert.False(t, RolePharmacist.Can(CapUserManage))

	// Doctor only reads the catalog
	assert.True(t, RoleDoctor.Can(CapMedicineRead))
	assert.False(t, RoleDoctor.Can(CapInventoryRead))
	assert.False(t, RoleDoctor.Can(CapInventoryWrite))

	// Unknown role holds nothing
	assert.False(t, Role("nurse").Can(CapMedicineRead))
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Alice ", "s3cret-pass", RolePharmacist)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.Active)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))

	_, err = NewUser("", "s3cret-pass", RoleAdmin)
	assert.Error(t, err)

	_, err = NewUser("bob", "short", RoleAdmin)
	assert.Error(t, err)

	_, err = NewUser("bob", "s3cret-pass", Role("nurse"))
	assert.Error(t, err)
}

func TestUser_Can(t *testing.T) {
	u, err := NewUser("carol", "s3cret-pass", RoleDoctor)
	require.NoError(t, err)
	assert.True(t, u.Can(CapMedicineRead))
	assert.False(t, u.Can(CapInventoryWrite))

	u.Active = false
	assert.False(t, u.Can(CapMedicineRead), "inactive users hold no capabilities")
}
