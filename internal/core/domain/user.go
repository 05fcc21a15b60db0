package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// User models an account that can authenticate against the API.
type User struct {
	ID             string    `json:"id" bson:"id"`
	Email          string    `json:"email" bson:"email"`
	Username       string    `json:"username" bson:"username"`
	HashedPassword string    `json:"-" bson:"hashed_password"`
	FullName       string    `json:"full_name,omitempty" bson:"full_name"`
	Role           string    `json:"role" bson:"role"`
	Disabled       bool      `json:"disabled" bson:"disabled"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}
