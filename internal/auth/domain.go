package auth

import "time"

// User represents a registered account. Roles holds named role strings as
// stored; they are resolved into an authz.Roles set when a principal is
// built.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Phone        string
	City         string
	AvatarURL    *string
	IsActive     bool
	IsSuperuser  bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
