package shared

// Permission actions guarding the HTTP surface.
const (
	PermReadUser   = "READ_USER"
	PermWriteUser  = "WRITE_USER"
	PermDeleteUser = "DELETE_USER"

	PermReadRole   = "READ_ROLE"
	PermWriteRole  = "WRITE_ROLE"
	PermDeleteRole = "DELETE_ROLE"

	PermReadPermission   = "READ_PERMISSION"
	PermWritePermission  = "WRITE_PERMISSION"
	PermDeletePermission = "DELETE_PERMISSION"

	PermAssignRole          = "ASSIGN_ROLE"
	PermAssignPermission    = "ASSIGN_PERMISSION"
	PermReadRoleAssignments = "READ_ROLE_ASSIGNMENTS"
	PermReadRolePermissions = "READ_ROLE_PERMISSIONS"
)

// DefaultRoleName is attached to every registered user.
const DefaultRoleName = "User"

// Catalog lists every permission action known to the system.
func Catalog() []string {
	return []string{
		PermReadUser,
		PermWriteUser,
		PermDeleteUser,
		PermReadRole,
		PermWriteRole,
		PermDeleteRole,
		PermReadPermission,
		PermWritePermission,
		PermDeletePermission,
		PermAssignRole,
		PermAssignPermission,
		PermReadRoleAssignments,
		PermReadRolePermissions,
	}
}
