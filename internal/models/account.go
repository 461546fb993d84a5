package models

import "time"

// Role represents the access level carried in issued tokens.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainee Role = "TRAINEE"
)

// Account represents a credentialled identity stored in the accounts table.
type Account struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
