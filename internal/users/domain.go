package users

import "time"

// User represents a user account for management. RoleName is empty when no
// role has been assigned yet.
type User struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	RoleName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleSummary is the management view of a role.
type RoleSummary struct {
	ID          int64
	Name        string
	Description string
}
