package model

// Role is a coarse authorization label carried by a user and its tokens
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserCollectionName is the name of the users collection on disk
const UserCollectionName = "users"

// User model
type User struct {
	ID    int    `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
	// HashedPassword is the encoded bcrypt digest, never the raw password.
	HashedPassword string `json:"hashedPassword"`
}

func (u User) RecordID() int {
	return u.ID
}

func (u User) WithID(id int) User {
	u.ID = id
	return u
}
