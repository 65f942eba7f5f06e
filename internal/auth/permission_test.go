package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionManageUsers, true},
		{RoleManager, ActionManageUsers, false},
		{RoleManager, ActionSwapEngineers, true},
		{RoleStaff, ActionSwapEngineers, true},
		{RoleStaff, ActionSwapRooms, false},
		{RoleStaff, ActionOverridePricing, false},
		{RoleEngineer, ActionSwapEngineers, false},
		{RoleClient, ActionCreateBookings, true},
		{RoleClient, ActionApplyDiscounts, false},
		{Role("intern"), ActionCreateBookings, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.action))
		})
	}
}

func TestDiscountCeilingsMatchPermission(t *testing.T) {
	for _, r := range Roles {
		if MaxDiscountPercent(r) > 0 {
			assert.True(t, HasPermission(r, ActionApplyDiscounts), "role %s has a ceiling but no permission", r)
		}
	}
	assert.Equal(t, 25.0, MaxDiscountPercent(RoleManager))
	assert.Zero(t, MaxDiscountPercent(RoleClient))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleEngineer.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}
