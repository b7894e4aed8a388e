package model

type User struct {
	Base

	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`

	// HashedPassword is never serialized outward.
	HashedPassword string `json:"-"`

	IsAdmin  bool `json:"is_admin"`
	IsActive bool `json:"is_active"`
}
