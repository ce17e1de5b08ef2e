package auth

// UserRole is the role a user holds inside an organization
type UserRole string

const (
	// RoleRoot is the privileged role granted to every OAuth2 user
	RoleRoot UserRole = "root"
	// RoleAdmin can manage the organization
	RoleAdmin UserRole = "admin"
	// RoleEditor can view and edit
	RoleEditor UserRole = "editor"
	// RoleViewer is read only
	RoleViewer UserRole = "viewer"
	// RoleUser is a regular member
	RoleUser UserRole = "user"
	// RoleServiceAccount is used by machine clients
	RoleServiceAccount UserRole = "service_account"
)

// ProvisionedRole is the only role OAuth2 users are created with
const ProvisionedRole = RoleRoot

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	for _, role := range GetAllRoles() {
		if role == r {
			return true
		}
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleServiceAccount,
		RoleViewer,
		RoleUser,
		RoleEditor,
		RoleAdmin,
		RoleRoot,
	}
}
