package types

import (
	"time"
)

// User is the identity record. PasswordHash never leaves the server.
type User struct {
	ID           int64      `json:"id" example:"1"`
	Name         string     `json:"name" example:"User_1"`
	Email        string     `json:"email" example:"user_1@example.com"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active" example:"true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// CreateUserParams is the registration payload.
type CreateUserParams struct {
	Name     string `json:"name" validate:"required,min=3,max=50" example:"User_1"`
	Email    string `json:"email" validate:"required,email,max=100" example:"user_1@example.com"`
	Password string `json:"password" validate:"required,min=8,max=255" example:"12345678"`
}
