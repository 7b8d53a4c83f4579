package models

import (
	"time"
)

// User is an account that can authenticate against the API.
type User struct {
	ID           string     `bson:"id" json:"id" validate:"required"`
	Name         string     `bson:"name" json:"name" validate:"required"`
	Email        string     `bson:"email" json:"email" validate:"required,email"`
	Phone        string     `bson:"phone" json:"phone"`
	Role         Role       `bson:"user_type" json:"user_type" validate:"required,enum"`
	Department   Department `bson:"department,omitempty" json:"department,omitempty" validate:"omitempty,enum"`
	Location     string     `bson:"location,omitempty" json:"location,omitempty"`
	IsActive     bool       `bson:"is_active" json:"is_active"`
	PasswordHash string     `bson:"password_hash" json:"-" validate:"required"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

func (u *User) Validate() error {
	return check("user", u.ID, u)
}
