package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	IsStaff     bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser bool      `json:"is_superuser" db:"is_superuser"`
	// Subscribed marks administrators who receive new-request notifications.
	Subscribed bool      `json:"subscribed" db:"subscribed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds staff or superuser privileges.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}
