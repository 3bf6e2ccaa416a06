package rbac

// Role as seen through the assignment endpoints.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission as seen through the assignment endpoints.
type Permission struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Grants is the deduplicated snapshot of a user's role names and permission
// actions, computed by walking user_roles → roles → role_permissions →
// permissions. It is what gets embedded in an issued token.
type Grants struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
