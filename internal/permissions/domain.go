package permissions

// Permission is an atomic capability identified by a globally unique action
// token such as "READ_USER".
type Permission struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}
