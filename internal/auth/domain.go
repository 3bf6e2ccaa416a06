package auth

// User is the credential-bearing account record. PasswordHash never leaves
// this package.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	LocationID   *string
}
