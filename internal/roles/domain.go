package roles

// Role is a named grouping of permissions. Names are globally unique and
// usable as human-readable keys in cache entries and logs.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
