package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"staff role", RoleStaff, true},
		{"invalid role", "manager", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	staff := &User{Role: RoleStaff}
	unknown := &User{Role: "guest"}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		{"admin can manage users", admin, ActionManageUsers, true},
		{"admin can delete records", admin, ActionDeleteRecords, true},
		{"admin can manage bookings", admin, ActionManageBookings, true},

		{"staff can manage bookings", staff, ActionManageBookings, true},
		{"staff can manage fleet", staff, ActionManageFleet, true},
		{"staff can view bookings", staff, ActionViewBookings, true},
		{"staff cannot manage users", staff, ActionManageUsers, false},
		{"staff cannot delete records", staff, ActionDeleteRecords, false},

		{"unknown role has no permissions", unknown, ActionViewBookings, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("%s.HasPermission(%s) = %v, want %v", tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
