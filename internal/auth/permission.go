package auth

// Role is the coarse-grained role of a user account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleEngineer Role = "engineer"
	RoleClient   Role = "client"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff, RoleEngineer, RoleClient}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Action is a capability checked before a mutation.
type Action string

const (
	ActionCreateBookings   Action = "create_bookings"
	ActionSwapEngineers    Action = "swap_engineers"
	ActionSwapRooms        Action = "swap_rooms"
	ActionApplyDiscounts   Action = "apply_discounts"
	ActionOverridePricing  Action = "override_pricing"
	ActionRecordPayments   Action = "record_payments"
	ActionCancelBookings   Action = "cancel_bookings"
	ActionCompleteBookings Action = "complete_bookings"
	ActionManageRooms      Action = "manage_rooms"
	ActionManageEngineers  Action = "manage_engineers"
	ActionManageUsers      Action = "manage_users"
)

var permissions = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionCreateBookings:   true,
		ActionSwapEngineers:    true,
		ActionSwapRooms:        true,
		ActionApplyDiscounts:   true,
		ActionOverridePricing:  true,
		ActionRecordPayments:   true,
		ActionCancelBookings:   true,
		ActionCompleteBookings: true,
		ActionManageRooms:      true,
		ActionManageEngineers:  true,
		ActionManageUsers:      true,
	},
	RoleManager: {
		ActionCreateBookings:   true,
		ActionSwapEngineers:    true,
		ActionSwapRooms:        true,
		ActionApplyDiscounts:   true,
		ActionOverridePricing:  true,
		ActionRecordPayments:   true,
		ActionCancelBookings:   true,
		ActionCompleteBookings: true,
		ActionManageRooms:      true,
		ActionManageEngineers:  true,
	},
	RoleStaff: {
		ActionCreateBookings:   true,
		ActionSwapEngineers:    true,
		ActionApplyDiscounts:   true,
		ActionRecordPayments:   true,
		ActionCancelBookings:   true,
		ActionCompleteBookings: true,
	},
	RoleEngineer: {
		ActionCompleteBookings: true,
		ActionRecordPayments:   true,
	},
	RoleClient: {
		ActionCreateBookings: true,
	},
}

// HasPermission reports whether role may perform action.
func HasPermission(role Role, action Action) bool {
	return permissions[role][action]
}

var discountCeilings = map[Role]float64{
	RoleAdmin:   100,
	RoleManager: 25,
	RoleStaff:   10,
}

// MaxDiscountPercent is the largest discount, in percent, a role may grant.
func MaxDiscountPercent(role Role) float64 {
	return discountCeilings[role]
}
