package auth

import "time"

// Admin is an administrator account allowed into /admin.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
