package users

// User is the management view of an account. The password hash stays in the
// auth module and is never part of this type.
type User struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	LocationID *string `json:"locationId,omitempty"`
	// Location is the resolved location name, populated on list queries.
	Location *string `json:"location,omitempty"`
}
