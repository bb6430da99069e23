package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is an authenticated account. Admin actions require RoleAdmin.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
