package entity

import (
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "mod"
)

type User struct {
	ID           int64     `json:"id" firestore:"-"`
	FirstName    string    `json:"first_name" firestore:"first_name"`
	LastName     string    `json:"last_name,omitempty" firestore:"last_name,omitempty"`
	Username     string    `json:"username,omitempty" firestore:"username,omitempty"`
	LanguageCode string    `json:"language_code,omitempty" firestore:"language_code,omitempty"`
	IsBot        bool      `json:"is_bot" firestore:"is_bot"`
	Role         string    `json:"role,omitempty" firestore:"role,omitempty"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}

// CanModerate reports whether the user may list submitted tickets.
func (u *User) CanModerate() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleModerator)
}
