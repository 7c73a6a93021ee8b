// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can view any account and edit profile fields, but never permissions
	RoleManager UserRole = "manager"

	// Default role: owns exactly one account and can only touch it
	RoleUser UserRole = "user"

	// Same grants as RoleUser, used by QA fixtures and automated checks
	RoleTester UserRole = "tester"
)

// # Role Resolution

// Known reports whether the role is one of the recognized account roles.
//
// The access guard rejects actors carrying any other value as malformed.
func (r UserRole) Known() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleTester:
		return true
	default:
		return false
	}
}
