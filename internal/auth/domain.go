package auth

import "time"

// User represents an account able to authenticate.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	RoleID       *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Token is an issued bearer credential.
type Token struct {
	Value     string
	UserID    int64
	ExpiresAt time.Time
}
