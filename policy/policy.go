// Package policy decides who may see and change reports, notifications and
// accounts. Nothing in here performs I/O; callers look the resource up first
// and only then ask the policy, so a missing resource is always reported as
// not found before any permission detail.
package policy

import (
	"civicreporter-be/apperror"
	"civicreporter-be/models"
)

// Caller is the actor behind a request. The zero value is anonymous.
type Caller struct {
	ID         string
	Name       string
	Role       models.Role
	Department models.Department
}

// Anonymous is the caller of an unauthenticated request.
var Anonymous = Caller{}

func (c Caller) Authenticated() bool { return c.ID != "" }

func (c Caller) IsAdmin() bool { return c.Authenticated() && c.Role == models.RoleAdmin }

func (c Caller) IsOfficer() bool { return c.Authenticated() && c.Role == models.RoleOfficer }

// CallerFromUser builds the caller for an authenticated account.
func CallerFromUser(u *models.User) Caller {
	return Caller{ID: u.ID, Name: u.Name, Role: u.Role, Department: u.Department}
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(c Caller) error {
	if !c.Authenticated() {
		return apperror.Unauthorized("authentication required")
	}
	return nil
}

// RequireAdmin is the capability check for admin-only operations.
func RequireAdmin(c Caller, action string) error {
	if err := RequireAuthenticated(c); err != nil {
		return err
	}
	if c.Role != models.RoleAdmin {
		return apperror.Forbidden(action)
	}
	return nil
}

// RequireStaff is the capability check for officer-or-admin operations.
func RequireStaff(c Caller, action string) error {
	if err := RequireAuthenticated(c); err != nil {
		return err
	}
	if !c.Role.IsStaff() {
		return apperror.Forbidden(action)
	}
	return nil
}

// CanViewUser allows a caller to see their own account, and admins to see any.
func CanViewUser(c Caller, userID string) bool {
	return c.Authenticated() && (c.ID == userID || c.Role == models.RoleAdmin)
}
