package models

import "time"

type Role string

const (
	RoleClient  Role = "client"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// User is keyed by phone number. Roles are non-exclusive: a user may be a
// client, a partner and an admin at the same time.
type User struct {
	Phone     string    `json:"phone" yaml:"phone"`
	Nickname  string    `json:"nickname" yaml:"nickname"`
	Region    string    `json:"region" yaml:"region"`
	Roles     []Role    `json:"roles" yaml:"roles"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole adds a role if not already present.
func (u *User) GrantRole(role Role) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}
