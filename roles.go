package admins

import "strings"

// AdministratorRole is the role assigned to an account. Any
// non-empty value is accepted, the predefined roles feed the
// role selector in the forms.
type AdministratorRole = string

const (
	// RoleOwner manages other administrators
	RoleOwner AdministratorRole = "owner"
	// RoleAdmin manages content and settings
	RoleAdmin AdministratorRole = "admin"
	// RoleEditor manages content
	RoleEditor AdministratorRole = "editor"
	// RoleSupport has read access to customer data
	RoleSupport AdministratorRole = "support"
)

// GetAllRoles returns the predefined roles in hierarchical order
func GetAllRoles() []AdministratorRole {
	return []AdministratorRole{
		RoleSupport,
		RoleEditor,
		RoleAdmin,
		RoleOwner,
	}
}

// IsPredefinedRole checks if the role is one of GetAllRoles
func IsPredefinedRole(role string) bool {
	role = strings.TrimSpace(role)
	for _, r := range GetAllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
